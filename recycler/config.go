package recycler

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/untillpro/recycler/internal/mathutil"
)

// Defaults mirror the design this package ports: a bounded per-thread
// stack, a shared-capacity budget sized relative to it, 16-slot links, and
// a 1-in-8 admission ratio.
const (
	DefaultMaxCapacityPerThread = 4096
	DefaultSharedCapacityFactor = 2
	DefaultLinkCapacity         = 16
	DefaultRatio                = 8
)

// Config holds the five tunables spec'd for a pool. Zero-value fields other
// than MaxCapacityPerThread are filled by normalize, so a caller can set
// only the fields they care about; a MaxCapacityPerThread of zero is kept
// and disables pooling.
type Config struct {
	MaxCapacityPerThread      int
	SharedCapacityFactor      int
	MaxDelayedQueuesPerThread int
	LinkCapacity              int
	Ratio                     int

	name       string
	registerer prometheus.Registerer
}

// DefaultConfig returns the configuration a pool uses when no Option
// overrides it.
func DefaultConfig() Config {
	return Config{
		MaxCapacityPerThread:      DefaultMaxCapacityPerThread,
		SharedCapacityFactor:      DefaultSharedCapacityFactor,
		MaxDelayedQueuesPerThread: 2 * runtime.GOMAXPROCS(0),
		LinkCapacity:              DefaultLinkCapacity,
		Ratio:                     DefaultRatio,
	}
}

// normalize fills in anything left at its zero value (except
// MaxCapacityPerThread, where zero means "no pooling" and negative values
// are clamped to zero) and rounds
// LinkCapacity/Ratio up to the next power of two, the same rounding
// next-slot/link allocation assumes throughout this package.
func (c *Config) normalize() {
	if c.MaxCapacityPerThread < 0 {
		c.MaxCapacityPerThread = 0
	}
	if c.SharedCapacityFactor <= 0 {
		c.SharedCapacityFactor = DefaultSharedCapacityFactor
	}
	if c.MaxDelayedQueuesPerThread <= 0 {
		c.MaxDelayedQueuesPerThread = 2 * runtime.GOMAXPROCS(0)
	}
	if c.LinkCapacity <= 0 {
		c.LinkCapacity = DefaultLinkCapacity
	}
	c.LinkCapacity = mathutil.SafeFindNextPositivePowerOfTwo(c.LinkCapacity)
	if c.Ratio <= 0 {
		c.Ratio = DefaultRatio
	}
	c.Ratio = mathutil.SafeFindNextPositivePowerOfTwo(c.Ratio)
}

func (c Config) sharedCapacity() int64 {
	shared := int64(c.MaxCapacityPerThread) / int64(c.SharedCapacityFactor)
	if shared < int64(c.LinkCapacity) {
		shared = int64(c.LinkCapacity)
	}
	return shared
}

func (c Config) dropMask() int {
	return c.Ratio - 1
}

// Option configures a Pool at construction time.
type Option func(*Config)

// WithConfig replaces the pool's configuration wholesale.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// WithMaxCapacityPerThread overrides the per-thread stack's capacity. Zero
// disables pooling: every acquire constructs a fresh value whose handle is
// a no-op sink.
func WithMaxCapacityPerThread(n int) Option {
	return func(c *Config) { c.MaxCapacityPerThread = n }
}

// WithSharedCapacityFactor overrides the divisor used to size a stack's
// initial available-shared-capacity from its max capacity.
func WithSharedCapacityFactor(n int) Option {
	return func(c *Config) { c.SharedCapacityFactor = n }
}

// WithMaxDelayedQueuesPerThread overrides how many distinct target stacks a
// single foreign goroutine may hold an intake queue against at once.
func WithMaxDelayedQueuesPerThread(n int) Option {
	return func(c *Config) { c.MaxDelayedQueuesPerThread = n }
}

// WithLinkCapacity overrides the per-link element count (rounded up to a
// power of two).
func WithLinkCapacity(n int) Option {
	return func(c *Config) { c.LinkCapacity = n }
}

// WithRatio overrides the drop-policy admission ratio: one of every Ratio
// recycles is kept (rounded up to a power of two).
func WithRatio(n int) Option {
	return func(c *Config) { c.Ratio = n }
}

// WithMetrics registers a Metrics instance for this pool against reg, under
// the given pool name (used as a const label so multiple pools can share
// one registerer). Without this option a pool collects no metrics at all.
func WithMetrics(reg prometheus.Registerer, name string) Option {
	return func(c *Config) {
		c.registerer = reg
		c.name = name
	}
}
