package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ResourceID identifies a single compute resource on the platform.
// Resources are interchangeable, identically-capable units; the platform
// numbers them as the contiguous range [0, N-1].
type ResourceID int

// ResourceSet is an ordered set of resource identifiers.
// The slice is always sorted ascending and free of duplicates, so the
// canonical ordering required by downstream consumers falls out for free.
type ResourceSet []ResourceID

// NewResourceRange returns the set {0, 1, ..., n-1}.
func NewResourceRange(n int) ResourceSet {
	set := make(ResourceSet, n)
	for i := 0; i < n; i++ {
		set[i] = ResourceID(i)
	}
	return set
}

// Len returns the number of resources in the set.
func (s ResourceSet) Len() int { return len(s) }

// Clone returns an independent copy of the set.
func (s ResourceSet) Clone() ResourceSet {
	if s == nil {
		return nil
	}
	out := make(ResourceSet, len(s))
	copy(out, s)
	return out
}

// Contains reports whether id is a member of the set.
func (s ResourceSet) Contains(id ResourceID) bool {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		if s[mid] < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(s) && s[lo] == id
}

// Add inserts id, keeping the set sorted. Adding an existing member is a no-op.
func (s ResourceSet) Add(id ResourceID) ResourceSet {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		if s[mid] < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s) && s[lo] == id {
		return s
	}
	s = append(s, 0)
	copy(s[lo+1:], s[lo:])
	s[lo] = id
	return s
}

// Remove deletes id from the set. Removing a non-member is a no-op.
func (s ResourceSet) Remove(id ResourceID) ResourceSet {
	for i, r := range s {
		if r == id {
			return append(s[:i], s[i+1:]...)
		}
		if r > id {
			break
		}
	}
	return s
}

// Intersect returns the members common to s and other.
// Both sets are sorted, so a single linear merge suffices.
func (s ResourceSet) Intersect(other ResourceSet) ResourceSet {
	n := len(s)
	if len(other) < n {
		n = len(other)
	}
	out := make(ResourceSet, 0, n)
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] < other[j]:
			i++
		case s[i] > other[j]:
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	return out
}

// Take returns the k numerically smallest members as a new set.
// It returns nil if the set has fewer than k members.
func (s ResourceSet) Take(k int) ResourceSet {
	if k < 0 || len(s) < k {
		return nil
	}
	out := make(ResourceSet, k)
	copy(out, s[:k])
	return out
}

// ContiguousRun returns the first k ids of the lowest-starting run of at
// least k consecutive identifiers, or nil if no such run exists.
func (s ResourceSet) ContiguousRun(k int) ResourceSet {
	if k <= 0 || len(s) < k {
		return nil
	}
	start := 0
	for i := 1; i <= len(s); i++ {
		if i < len(s) && s[i] == s[i-1]+1 {
			continue
		}
		if i-start >= k {
			out := make(ResourceSet, k)
			copy(out, s[start:start+k])
			return out
		}
		start = i
	}
	return nil
}

// Equal reports whether the two sets have identical members.
func (s ResourceSet) Equal(other ResourceSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the set in range-compressed form, e.g. "0-2,5,7-8".
// Members appear in ascending order.
func (s ResourceSet) String() string {
	if len(s) == 0 {
		return ""
	}
	var b strings.Builder
	start := 0
	for i := 1; i <= len(s); i++ {
		if i < len(s) && s[i] == s[i-1]+1 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		if i-start == 1 {
			b.WriteString(strconv.Itoa(int(s[start])))
		} else {
			fmt.Fprintf(&b, "%d-%d", s[start], s[i-1])
		}
		start = i
	}
	return b.String()
}

// ParseResourceSet parses the range-compressed form produced by String.
func ParseResourceSet(in string) (ResourceSet, error) {
	var set ResourceSet
	if in == "" {
		return set, nil
	}
	for _, part := range strings.Split(in, ",") {
		lo, hi, found := strings.Cut(part, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid resource id %q: %w", part, err)
		}
		to := from
		if found {
			to, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid resource range %q: %w", part, err)
			}
		}
		if to < from {
			return nil, fmt.Errorf("invalid resource range %q: end before start", part)
		}
		for id := from; id <= to; id++ {
			set = set.Add(ResourceID(id))
		}
	}
	return set, nil
}
