package service

import (
	"time"

	"github.com/yourusername/roi-ledger/internal/notify"
)

// Invalidator drops cached views after a write
type Invalidator interface {
	Invalidate()
}

type options struct {
	publisher notify.Publisher
	cache     Invalidator
	now       func() time.Time
}

// Option configures the write services
type Option func(*options)

// WithPublisher sends change events to p
func WithPublisher(p notify.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithCache invalidates c after every successful write
func WithCache(c Invalidator) Option {
	return func(o *options) { o.cache = c }
}

// WithClock overrides the time source used for generated names
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		publisher: notify.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) changed(event notify.Event) {
	o.invalidate()
	o.publisher.Publish(event)
}

// invalidate drops cached views without announcing a change. Failed writes
// that already touched the store use it.
func (o options) invalidate() {
	if o.cache != nil {
		o.cache.Invalidate()
	}
}
