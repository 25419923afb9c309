// Package receipt mints the human-readable sale identifiers printed on
// receipts. Format: "R" + unix seconds + 4 random digits. Same-second commits
// can collide on the suffix, so the sale engine treats the receipt column as
// unique and regenerates on conflict.
package receipt

import (
	"fmt"
	"math/rand"
	"time"
)

// Generator produces receipt numbers. The zero value is not usable; construct
// with New so tests can pin the clock.
type Generator struct {
	now func() time.Time
}

func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock builds a generator with a fixed clock source for tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns a fresh receipt number. Uniqueness is a heuristic here; the
// database constraint is the authority.
func (g *Generator) Next() string {
	return fmt.Sprintf("R%d%04d", g.now().Unix(), rand.Intn(9000)+1000)
}
