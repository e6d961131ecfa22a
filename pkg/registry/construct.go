package registry

import (
	"fmt"
	"log/slog"
	"time"

	"dimledger/pkg/domain"
	"dimledger/pkg/store"
)

// ConstructRegistry mints dimensional constructs and tracks who owns them.
type ConstructRegistry struct {
	store   store.ConstructStore
	logger  *slog.Logger
	now     func() time.Time
	metrics *constructMetrics
}

// NewConstructRegistry builds a registry over an in-memory store unless
// WithConstructStore supplies another one.
func NewConstructRegistry(opts ...Option) *ConstructRegistry {
	o := buildOptions(opts)
	s := o.constructs
	if s == nil {
		s = store.NewMemoryStore()
	}
	return &ConstructRegistry{
		store:   s,
		logger:  o.logger.With("registry", "construct"),
		now:     o.now,
		metrics: newConstructMetrics(o.promRegistry),
	}
}

// UsingLogger returns a view of r that logs through logger. The view shares
// the store and metrics of r, so mutations through either are visible to both.
func (r *ConstructRegistry) UsingLogger(logger *slog.Logger) *ConstructRegistry {
	if logger == nil {
		return r
	}
	view := *r
	view.logger = logger.With("registry", "construct")
	return &view
}

// Mint records a new construct owned by its creator and returns its ID.
// Inputs are not validated.
func (r *ConstructRegistry) Mint(name, description string, dimensions int, visualizationURL, creator string) (int64, error) {
	c, err := r.store.CreateConstruct(domain.Construct{
		Creator:          creator,
		Name:             name,
		Description:      description,
		Dimensions:       dimensions,
		VisualizationURL: visualizationURL,
		CreatedAt:        r.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("mint construct: %w", err)
	}
	r.metrics.minted.Inc()
	r.logger.Debug("construct minted", "id", c.ID, "creator", creator, "dimensions", dimensions)
	return c.ID, nil
}

// Transfer hands construct id from sender to recipient. It fails with
// ErrNotAuthorized unless sender is the current owner; an unknown id has no
// owner and fails the same way.
func (r *ConstructRegistry) Transfer(id int64, sender, recipient string) (bool, error) {
	swapped, err := r.store.SwapOwner(id, sender, recipient)
	if err != nil {
		return false, fmt.Errorf("transfer construct %d: %w", id, err)
	}
	if !swapped {
		r.metrics.transfersRejected.Inc()
		r.logger.Warn("construct transfer rejected", "id", id, "sender", sender)
		return false, ErrNotAuthorized
	}
	r.metrics.transfers.Inc()
	r.logger.Debug("construct transferred", "id", id, "from", sender, "to", recipient)
	return true, nil
}

// Construct returns the metadata of a minted construct.
func (r *ConstructRegistry) Construct(id int64) (domain.Construct, bool, error) {
	return r.store.GetConstruct(id)
}

// OwnerOf returns the current owner of a construct.
func (r *ConstructRegistry) OwnerOf(id int64) (string, bool, error) {
	return r.store.OwnerOf(id)
}

// Constructs lists every construct in mint order.
func (r *ConstructRegistry) Constructs() ([]domain.Construct, error) {
	return r.store.ListConstructs()
}

// ConstructsOwnedBy lists the constructs owner currently holds.
func (r *ConstructRegistry) ConstructsOwnedBy(owner string) ([]domain.Construct, error) {
	return r.store.ListConstructsByOwner(owner)
}

// Reset drops all constructs; the next mint returns 1 again.
func (r *ConstructRegistry) Reset() error {
	if err := r.store.ResetConstructs(); err != nil {
		return fmt.Errorf("reset constructs: %w", err)
	}
	return nil
}
