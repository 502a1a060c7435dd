package orders

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

var orderNumberPattern = regexp.MustCompile(`(?i)^CIL-[A-Z0-9-]+$`)

// NumberGenerator hands out candidate order numbers. Uniqueness is enforced
// by the orders table, not by the generator.
type NumberGenerator interface {
	Generate() string
}

// Generator builds numbers shaped CIL-<last 6 digits of unix millis>-<000..999>.
type Generator struct {
	now  func() time.Time
	intN func(n int) int
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now, intN: rand.IntN}
}

// NewGeneratorWith lets callers pin the clock and random source.
func NewGeneratorWith(now func() time.Time, intN func(n int) int) *Generator {
	g := NewGenerator()
	if now != nil {
		g.now = now
	}
	if intN != nil {
		g.intN = intN
	}
	return g
}

func (g *Generator) Generate() string {
	millis := g.now().UnixMilli() % 1_000_000
	if millis < 0 {
		millis = -millis
	}
	return fmt.Sprintf("CIL-%06d-%03d", millis, g.intN(1000))
}

// ValidOrderNumber reports whether s looks like an order number. It is a
// format check only.
func ValidOrderNumber(s string) bool {
	return orderNumberPattern.MatchString(strings.TrimSpace(s))
}

// NormalizeOrderNumber trims and upper-cases user input so lookups match
// the stored form.
func NormalizeOrderNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
