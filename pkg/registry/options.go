package registry

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dimledger/pkg/domain"
	"dimledger/pkg/store"
)

type options struct {
	logger        *slog.Logger
	now           func() time.Time
	promRegistry  prometheus.Registerer
	constructs    store.ConstructStore
	theories      store.TheoryStore
	authority     string
	initialStatus domain.TheoryStatus
}

// Option configures a registry.
type Option func(*options)

// WithLogger sets the logger used for mutation and rejection events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithMetrics registers the registry counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.promRegistry = reg
	}
}

// WithConstructStore sets the backing store of a ConstructRegistry.
func WithConstructStore(s store.ConstructStore) Option {
	return func(o *options) {
		o.constructs = s
	}
}

// WithTheoryStore sets the backing store of a TheoryRegistry.
func WithTheoryStore(s store.TheoryStore) Option {
	return func(o *options) {
		o.theories = s
	}
}

// WithStatusAuthority sets the single identity allowed to change theory status.
func WithStatusAuthority(identity string) Option {
	return func(o *options) {
		o.authority = identity
	}
}

// WithInitialStatus sets the status given to newly submitted theories.
func WithInitialStatus(status domain.TheoryStatus) Option {
	return func(o *options) {
		o.initialStatus = status
	}
}

func buildOptions(opts []Option) options {
	o := options{
		authority:     domain.DefaultStatusAuthority,
		initialStatus: domain.StatusPending,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = func() time.Time { return time.Now().UTC() }
	}
	return o
}
