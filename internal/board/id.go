package board

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator issues card ids. Implementations must never return the same
// id twice within a process.
type IDGenerator interface {
	NewID() string
}

// ClockGenerator derives ids from the wall clock in nanoseconds. Two calls
// within the same tick are bumped so issued ids stay strictly increasing.
type ClockGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewClockGenerator() *ClockGenerator {
	return &ClockGenerator{now: time.Now}
}

func (g *ClockGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now
	if now == nil {
		now = time.Now
	}
	n := now().UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return strconv.FormatInt(n, 10)
}

// UUIDGenerator issues time-ordered UUIDv7 ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewIDGenerator maps a configured id format to a generator. Unknown
// formats fall back to the clock generator.
func NewIDGenerator(format string) IDGenerator {
	if format == "uuid" {
		return UUIDGenerator{}
	}
	return NewClockGenerator()
}
