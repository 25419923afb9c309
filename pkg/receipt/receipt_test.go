package receipt

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestNextFormat(t *testing.T) {
	t.Parallel()

	fixed := time.Unix(1700000000, 0)
	gen := NewWithClock(func() time.Time { return fixed })

	pattern := regexp.MustCompile(`^R1700000000\d{4}$`)
	for i := 0; i < 50; i++ {
		number := gen.Next()
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected receipt number %q", number)
		}
	}
}

func TestNextVariesWithinSecond(t *testing.T) {
	t.Parallel()

	fixed := time.Unix(1700000000, 0)
	gen := NewWithClock(func() time.Time { return fixed })

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[strings.TrimPrefix(gen.Next(), "R1700000000")] = true
	}
	// 200 draws over 9000 suffixes; more than one distinct suffix is all the
	// generator promises, the unique column handles the rest.
	if len(seen) < 2 {
		t.Fatalf("expected varying suffixes, got %d distinct", len(seen))
	}
}
