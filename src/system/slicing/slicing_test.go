package slicing

import (
	"errors"
	"testing"

	"github.com/voodooEntity/neurosplit/src/system/failure"
)

func TestFixed_1024AtomsWidth100_Produces11Slices(t *testing.T) {
	slices, err := Fixed(1024, 100)
	if nil != err {
		t.Fatalf("unexpected error %v", err)
	}
	if len(slices) != 11 {
		t.Fatalf("expected 11 slices, got %d", len(slices))
	}
	last := slices[len(slices)-1]
	if last.LoAtom != 1000 || last.HiAtom != 1023 || last.NAtoms() != 24 {
		t.Fatalf("expected last slice 1000-1023 (24 atoms), got %s (%d)", last, last.NAtoms())
	}
}

func TestFixed_ExactPartitionForManySizes(t *testing.T) {
	for n := 1; n <= 300; n += 7 {
		for w := 1; w <= 64; w += 5 {
			slices, err := Fixed(n, w)
			if nil != err {
				t.Fatalf("n=%d w=%d: %v", n, w, err)
			}
			if len(slices) != (n+w-1)/w {
				t.Fatalf("n=%d w=%d: expected %d slices, got %d", n, w, (n+w-1)/w, len(slices))
			}
			next := 0
			for _, s := range slices {
				if s.LoAtom != next {
					t.Fatalf("n=%d w=%d: gap or overlap at %s, expected lo %d", n, w, s, next)
				}
				if err := s.Validate(n); nil != err {
					t.Fatalf("n=%d w=%d: %v", n, w, err)
				}
				next = s.HiAtom + 1
			}
			if next != n {
				t.Fatalf("n=%d w=%d: coverage ends at %d", n, w, next)
			}
		}
	}
}

func TestFixed_RejectsBadBounds(t *testing.T) {
	var cfgErr *failure.ConfigurationError
	if _, err := Fixed(10, 0); !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error for zero width, got %v", err)
	}
	if _, err := Fixed(0, 10); !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error for empty population, got %v", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		slice Slice
		n     int
		ok    bool
	}{
		{"valid", New(0, 9), 10, true},
		{"lo above hi", New(5, 4), 10, false},
		{"hi beyond population", New(0, 10), 10, false},
		{"negative lo", New(-1, 3), 10, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slice.Validate(tt.n)
			var pre *failure.PreconditionError
			if tt.ok && nil != err {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.ok && !errors.As(err, &pre) {
				t.Fatalf("expected precondition error, got %v", err)
			}
		})
	}
}

func TestOverlap(t *testing.T) {
	o, ok := New(0, 9).Overlap(New(5, 20))
	if !ok || o != New(5, 9) {
		t.Fatalf("expected 5-9, got %s %v", o, ok)
	}
	if _, ok := New(0, 4).Overlap(New(5, 9)); ok {
		t.Fatalf("expected no overlap for adjacent slices")
	}
}
