package sched

import (
	"github.com/hpcsched/batling/internal/types"
)

// slot is the occupancy of the platform at one time breakpoint.
type slot struct {
	free types.ResourceSet
	held map[types.ResourceID]string
}

// Profile is the time-indexed reservation table used by the backfilling
// strategies. The time axis is a sequence of integer ticks; slots are
// materialized lazily as reservations demand visibility further into the
// future. A point beyond the materialized horizon is never reported free
// blindly: the horizon is extended first, seeding new slots with the
// full platform set minus whatever running jobs without an expiry still hold.
type Profile struct {
	hostCount int
	now       int64
	slots     []slot

	// indefinite tracks resources held by jobs whose walltime is unknown.
	// Their reservations have no end tick, so newly materialized slots must
	// be seeded without them.
	indefinite map[types.ResourceID]string
}

// NewProfile creates a profile for hostCount resources with one slot
// materialized at tick zero.
func NewProfile(hostCount int) *Profile {
	p := &Profile{
		hostCount:  hostCount,
		indefinite: make(map[types.ResourceID]string),
	}
	p.extend(0)
	return p
}

// Horizon returns the first tick past the materialized time axis.
func (p *Profile) Horizon() int64 {
	return int64(len(p.slots))
}

// Advance moves the current simulated time forward. Slots before now are
// kept (they are cheap and make the table easy to dump) but can no longer
// be queried.
func (p *Profile) Advance(now int64) {
	if now > p.now {
		p.now = now
	}
	p.extend(p.now)
}

// extend materializes slots up to and including tick t.
func (p *Profile) extend(t int64) {
	for int64(len(p.slots)) <= t {
		s := slot{
			free: types.NewResourceRange(p.hostCount),
			held: make(map[types.ResourceID]string),
		}
		for r, holder := range p.indefinite {
			s.free = s.free.Remove(r)
			s.held[r] = holder
		}
		p.slots = append(p.slots, s)
	}
}

// FreeAt returns the resources unheld at tick t.
func (p *Profile) FreeAt(t int64) (types.ResourceSet, error) {
	if t < p.now {
		return nil, ErrPastTime
	}
	p.extend(t)
	return p.slots[t].free.Clone(), nil
}

// Reserve marks set as held by jobID for [from, from+duration), or until
// released when duration is non-positive. Callers must have verified
// availability via Intersection first; a conflict here is an invariant
// breach and aborts the reservation untouched.
func (p *Profile) Reserve(set types.ResourceSet, from, duration int64, jobID string) error {
	if duration > 0 {
		p.extend(from + duration - 1)
		for t := from; t < from+duration; t++ {
			for _, r := range set {
				if !p.slots[t].free.Contains(r) {
					return &ConflictError{JobID: jobID, Resource: r, Time: t, Holder: p.slots[t].held[r]}
				}
			}
		}
		for t := from; t < from+duration; t++ {
			for _, r := range set {
				p.slots[t].free = p.slots[t].free.Remove(r)
				p.slots[t].held[r] = jobID
			}
		}
		return nil
	}

	// Unknown expiry: the resources must be free everywhere ahead, and new
	// slots must be seeded without them until a release arrives.
	for t := from; t < int64(len(p.slots)); t++ {
		for _, r := range set {
			if !p.slots[t].free.Contains(r) {
				return &ConflictError{JobID: jobID, Resource: r, Time: t, Holder: p.slots[t].held[r]}
			}
		}
	}
	for _, r := range set {
		if holder, ok := p.indefinite[r]; ok {
			return &ConflictError{JobID: jobID, Resource: r, Time: from, Holder: holder}
		}
	}
	for t := from; t < int64(len(p.slots)); t++ {
		for _, r := range set {
			p.slots[t].free = p.slots[t].free.Remove(r)
			p.slots[t].held[r] = jobID
		}
	}
	for _, r := range set {
		p.indefinite[r] = jobID
	}
	return nil
}

// Release frees set from tick from onward. Any future reservation record on
// these resources is simply cleared; the profile does not need to know the
// holder's original walltime. Unheld resources are skipped, which makes
// duplicate completions harmless.
func (p *Profile) Release(set types.ResourceSet, from int64) {
	for _, r := range set {
		delete(p.indefinite, r)
		for t := from; t < int64(len(p.slots)); t++ {
			if _, ok := p.slots[t].held[r]; !ok {
				continue
			}
			delete(p.slots[t].held, r)
			p.slots[t].free = p.slots[t].free.Add(r)
		}
	}
}

// Intersection narrows candidates to the subset free over the whole of
// [from, from+duration), extending the horizon as needed. With a
// non-positive duration the scan covers everything the profile can see,
// which for a job with unknown walltime is the strictest answer available.
func (p *Profile) Intersection(candidates types.ResourceSet, from, duration int64) types.ResourceSet {
	result := candidates.Clone()
	if result == nil {
		result = types.ResourceSet{}
	}

	end := from + duration
	if duration > 0 {
		p.extend(end - 1)
	} else {
		end = int64(len(p.slots))
		for _, r := range candidates {
			if _, ok := p.indefinite[r]; ok {
				result = result.Remove(r)
			}
		}
	}
	p.extend(from)

	for t := from; t < end && result.Len() > 0; t++ {
		result = result.Intersect(p.slots[t].free)
	}
	return result
}
