package types

import "testing"

func TestResourceSetIntersect(t *testing.T) {
	tests := []struct {
		name string
		a    ResourceSet
		b    ResourceSet
		want ResourceSet
	}{
		{
			name: "disjoint",
			a:    ResourceSet{0, 1},
			b:    ResourceSet{2, 3},
			want: ResourceSet{},
		},
		{
			name: "partial overlap",
			a:    ResourceSet{0, 2, 3, 5},
			b:    ResourceSet{2, 4, 5},
			want: ResourceSet{2, 5},
		},
		{
			name: "identical",
			a:    ResourceSet{1, 2, 3},
			b:    ResourceSet{1, 2, 3},
			want: ResourceSet{1, 2, 3},
		},
		{
			name: "empty candidate",
			a:    ResourceSet{},
			b:    ResourceSet{0, 1},
			want: ResourceSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if !got.Equal(tt.want) {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResourceSetAddRemove(t *testing.T) {
	s := ResourceSet{}
	for _, id := range []ResourceID{3, 0, 2, 3} {
		s = s.Add(id)
	}
	if !s.Equal(ResourceSet{0, 2, 3}) {
		t.Fatalf("after adds got %v, want [0 2 3]", s)
	}

	s = s.Remove(2)
	if !s.Equal(ResourceSet{0, 3}) {
		t.Fatalf("after remove got %v, want [0 3]", s)
	}

	// Removing a non-member must be a no-op.
	s = s.Remove(9)
	if !s.Equal(ResourceSet{0, 3}) {
		t.Fatalf("remove of non-member changed set: %v", s)
	}

	if !s.Contains(3) || s.Contains(2) {
		t.Errorf("Contains() inconsistent with set %v", s)
	}
}

func TestResourceSetContiguousRun(t *testing.T) {
	tests := []struct {
		name string
		set  ResourceSet
		k    int
		want ResourceSet
	}{
		{
			name: "run exists",
			set:  ResourceSet{0, 2, 3},
			k:    2,
			want: ResourceSet{2, 3},
		},
		{
			name: "no run",
			set:  ResourceSet{0, 2},
			k:    2,
			want: nil,
		},
		{
			name: "prefers lowest starting run",
			set:  ResourceSet{1, 2, 5, 6, 7},
			k:    2,
			want: ResourceSet{1, 2},
		},
		{
			name: "takes first k of longer run",
			set:  ResourceSet{4, 5, 6, 7},
			k:    2,
			want: ResourceSet{4, 5},
		},
		{
			name: "set too small",
			set:  ResourceSet{0},
			k:    2,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.set.ContiguousRun(tt.k)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ContiguousRun() = %v, want nil", got)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ContiguousRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResourceSetString(t *testing.T) {
	tests := []struct {
		name string
		set  ResourceSet
		want string
	}{
		{name: "empty", set: ResourceSet{}, want: ""},
		{name: "single", set: ResourceSet{4}, want: "4"},
		{name: "single run", set: ResourceSet{0, 1, 2, 3}, want: "0-3"},
		{name: "mixed", set: ResourceSet{0, 1, 2, 5, 7, 8}, want: "0-2,5,7-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseResourceSet(t *testing.T) {
	set, err := ParseResourceSet("0-2,5,7-8")
	if err != nil {
		t.Fatalf("ParseResourceSet() error = %v", err)
	}
	if !set.Equal(ResourceSet{0, 1, 2, 5, 7, 8}) {
		t.Errorf("ParseResourceSet() = %v", set)
	}

	if _, err := ParseResourceSet("3-1"); err == nil {
		t.Error("ParseResourceSet() accepted inverted range")
	}
	if _, err := ParseResourceSet("a,b"); err == nil {
		t.Error("ParseResourceSet() accepted garbage")
	}
}

func TestResourceSetTake(t *testing.T) {
	set := ResourceSet{1, 4, 6, 9}

	got := set.Take(2)
	if !got.Equal(ResourceSet{1, 4}) {
		t.Errorf("Take(2) = %v, want [1 4]", got)
	}

	if set.Take(5) != nil {
		t.Error("Take() beyond set size should return nil")
	}
}
