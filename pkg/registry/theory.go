package registry

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"dimledger/pkg/domain"
	"dimledger/pkg/store"
)

// TheoryRegistry accepts theory submissions, tallies votes and lets a
// single authority relabel theory status.
type TheoryRegistry struct {
	store         store.TheoryStore
	logger        *slog.Logger
	now           func() time.Time
	metrics       *theoryMetrics
	authority     string
	initialStatus domain.TheoryStatus
}

// NewTheoryRegistry builds a registry over an in-memory store unless
// WithTheoryStore supplies another one.
func NewTheoryRegistry(opts ...Option) *TheoryRegistry {
	o := buildOptions(opts)
	s := o.theories
	if s == nil {
		s = store.NewMemoryStore()
	}
	return &TheoryRegistry{
		store:         s,
		logger:        o.logger.With("registry", "theory"),
		now:           o.now,
		metrics:       newTheoryMetrics(o.promRegistry),
		authority:     o.authority,
		initialStatus: o.initialStatus,
	}
}

// UsingLogger returns a view of r that logs through logger. The view shares
// the store and metrics of r, so mutations through either are visible to both.
func (r *TheoryRegistry) UsingLogger(logger *slog.Logger) *TheoryRegistry {
	if logger == nil {
		return r
	}
	view := *r
	view.logger = logger.With("registry", "theory")
	return &view
}

// StatusAuthority returns the identity allowed to call UpdateStatus.
func (r *TheoryRegistry) StatusAuthority() string {
	return r.authority
}

// Submit records a new theory with a zero tally and the initial status.
func (r *TheoryRegistry) Submit(title, description string, dimensions int, creator string) (int64, error) {
	t, err := r.store.CreateTheory(domain.Theory{
		Creator:     creator,
		Title:       title,
		Description: description,
		Dimensions:  dimensions,
		CreatedAt:   r.now(),
		Status:      r.initialStatus,
	})
	if err != nil {
		return 0, fmt.Errorf("submit theory: %w", err)
	}
	r.metrics.submitted.Inc()
	r.metrics.tally.WithLabelValues(theoryLabel(t.ID)).Set(0)
	r.logger.Debug("theory submitted", "id", t.ID, "creator", creator, "dimensions", dimensions)
	return t.ID, nil
}

// Vote casts value for voter on theory id, replacing any earlier ballot.
// The theory must exist (ErrInvalidTheory) and value must be -1, 0 or 1
// (ErrInvalidVote).
func (r *TheoryRegistry) Vote(id int64, value int, voter string) (bool, error) {
	_, ok, err := r.store.GetTheory(id)
	if err != nil {
		return false, fmt.Errorf("vote on theory %d: %w", id, err)
	}
	if !ok {
		r.rejectVote(id, voter, reasonInvalidTheory)
		return false, ErrInvalidTheory
	}
	if !domain.ValidVote(value) {
		r.rejectVote(id, voter, reasonInvalidVote)
		return false, ErrInvalidVote
	}
	res, ok, err := r.store.ApplyVote(id, voter, value)
	if err != nil {
		return false, fmt.Errorf("vote on theory %d: %w", id, err)
	}
	if !ok {
		r.rejectVote(id, voter, reasonInvalidTheory)
		return false, ErrInvalidTheory
	}
	r.metrics.votes.Inc()
	r.metrics.tally.WithLabelValues(theoryLabel(id)).Set(float64(res.Tally))
	r.logger.Debug("theory vote applied",
		"id", id,
		"voter", voter,
		"value", value,
		"previous", res.Previous,
		"delta", res.Delta,
		"tally", res.Tally,
	)
	return true, nil
}

// UpdateStatus relabels theory id. Only the status authority may do so.
// The label is stored as given.
func (r *TheoryRegistry) UpdateStatus(id int64, status domain.TheoryStatus, updater string) (bool, error) {
	_, ok, err := r.store.GetTheory(id)
	if err != nil {
		return false, fmt.Errorf("update theory %d status: %w", id, err)
	}
	if !ok {
		r.rejectStatus(id, updater, reasonInvalidTheory)
		return false, ErrInvalidTheory
	}
	if updater != r.authority {
		r.rejectStatus(id, updater, reasonNotAuthorized)
		return false, ErrNotAuthorized
	}
	ok, err = r.store.SetTheoryStatus(id, status)
	if err != nil {
		return false, fmt.Errorf("update theory %d status: %w", id, err)
	}
	if !ok {
		r.rejectStatus(id, updater, reasonInvalidTheory)
		return false, ErrInvalidTheory
	}
	r.metrics.statusUpdates.Inc()
	r.logger.Debug("theory status updated", "id", id, "status", status)
	return true, nil
}

// Theory returns a submitted theory.
func (r *TheoryRegistry) Theory(id int64) (domain.Theory, bool, error) {
	return r.store.GetTheory(id)
}

// Theories lists every theory in submission order.
func (r *TheoryRegistry) Theories() ([]domain.Theory, error) {
	return r.store.ListTheories()
}

// VoteOf returns the last ballot voter cast on theory id.
func (r *TheoryRegistry) VoteOf(id int64, voter string) (int, bool, error) {
	return r.store.GetVote(id, voter)
}

// Reset drops all theories and ballots; the next submit returns 1 again.
func (r *TheoryRegistry) Reset() error {
	if err := r.store.ResetTheories(); err != nil {
		return fmt.Errorf("reset theories: %w", err)
	}
	r.metrics.tally.Reset()
	return nil
}

func (r *TheoryRegistry) rejectVote(id int64, voter, reason string) {
	r.metrics.votesRejected.WithLabelValues(reason).Inc()
	r.logger.Warn("theory vote rejected", "id", id, "voter", voter, "reason", reason)
}

func (r *TheoryRegistry) rejectStatus(id int64, updater, reason string) {
	r.metrics.statusRejected.WithLabelValues(reason).Inc()
	r.logger.Warn("theory status update rejected", "id", id, "updater", updater, "reason", reason)
}

func theoryLabel(id int64) string {
	return strconv.FormatInt(id, 10)
}
