package registry

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"dimledger/pkg/domain"
	"dimledger/pkg/store"
)

func newTheoryRegistry(t *testing.T, opts ...Option) *TheoryRegistry {
	t.Helper()
	return NewTheoryRegistry(append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func mustTally(t *testing.T, r *TheoryRegistry, id int64) int64 {
	t.Helper()
	th, ok, err := r.Theory(id)
	if err != nil || !ok {
		t.Fatalf("theory %d lookup: ok=%v err=%v", id, ok, err)
	}
	return th.Votes
}

func TestSubmitStartsPendingWithZeroTally(t *testing.T) {
	r := newTheoryRegistry(t)

	id, err := r.Submit("String Theory", "A theory of everything based on 1-dimensional strings", 11, "researcher1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}
	th, _, _ := r.Theory(id)
	if th.Title != "String Theory" || th.Dimensions != 11 {
		t.Fatalf("unexpected theory: %+v", th)
	}
	if th.Status != domain.StatusPending {
		t.Fatalf("status = %q, want pending", th.Status)
	}
	if th.Votes != 0 {
		t.Fatalf("votes = %d, want 0", th.Votes)
	}
	if th.CreatedAt.IsZero() {
		t.Fatalf("createdAt not set")
	}

	next, _ := r.Submit("M-Theory", "An extension of string theory", 11, "researcher2")
	if next != 2 {
		t.Fatalf("second id = %d, want 2", next)
	}
}

func TestVoteReplacesPreviousBallot(t *testing.T) {
	r := newTheoryRegistry(t)
	id, _ := r.Submit("String Theory", "...", 11, "researcher1")

	ok, err := r.Vote(id, 1, "voterA")
	if err != nil || !ok {
		t.Fatalf("vote +1: ok=%v err=%v", ok, err)
	}
	if got := mustTally(t, r, id); got != 1 {
		t.Fatalf("tally = %d, want 1", got)
	}
	if _, err := r.Vote(id, -1, "voterA"); err != nil {
		t.Fatalf("vote -1: %v", err)
	}
	if got := mustTally(t, r, id); got != -1 {
		t.Fatalf("tally = %d, want -1", got)
	}
	if _, err := r.Vote(id, 2, "voterB"); !errors.Is(err, ErrInvalidVote) {
		t.Fatalf("expected ErrInvalidVote, got %v", err)
	}
	if got := mustTally(t, r, id); got != -1 {
		t.Fatalf("tally after invalid vote = %d, want -1", got)
	}
	if _, ok, _ := r.VoteOf(id, "voterB"); ok {
		t.Fatalf("invalid vote was recorded")
	}
}

func TestRepeatedVoteIsIdempotent(t *testing.T) {
	r := newTheoryRegistry(t)
	id, _ := r.Submit("M-Theory", "An extension of string theory", 11, "researcher2")

	for i := 0; i < 3; i++ {
		if _, err := r.Vote(id, 1, "voter1"); err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
		if got := mustTally(t, r, id); got != 1 {
			t.Fatalf("tally after vote %d = %d, want 1", i, got)
		}
	}
	if _, err := r.Vote(id, 1, "voter2"); err != nil {
		t.Fatalf("second voter: %v", err)
	}
	if got := mustTally(t, r, id); got != 2 {
		t.Fatalf("tally = %d, want 2", got)
	}
	if _, err := r.Vote(id, 0, "voter1"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := mustTally(t, r, id); got != 1 {
		t.Fatalf("tally after abstain = %d, want 1", got)
	}
	v, ok, _ := r.VoteOf(id, "voter1")
	if !ok || v != 0 {
		t.Fatalf("voter1 ballot = %d (ok=%v), want 0", v, ok)
	}
}

func TestVoteRejectsOutOfRangeValues(t *testing.T) {
	r := newTheoryRegistry(t)
	id, _ := r.Submit("Holographic Principle", "A principle in string theories", 10, "researcher4")

	for _, value := range []int{2, -2, 100, -100} {
		ok, err := r.Vote(id, value, "voter2")
		if !errors.Is(err, ErrInvalidVote) {
			t.Fatalf("value %d: expected ErrInvalidVote, got %v", value, err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("value %d: expected ErrInvalidVote to be an invalid input error", value)
		}
		if ok {
			t.Fatalf("value %d: rejected vote returned true", value)
		}
	}
	if got := mustTally(t, r, id); got != 0 {
		t.Fatalf("tally = %d, want 0", got)
	}
}

func TestVoteOnUnknownTheory(t *testing.T) {
	r := newTheoryRegistry(t)

	_, err := r.Vote(3, 1, "voter1")
	if !errors.Is(err, ErrInvalidTheory) {
		t.Fatalf("expected ErrInvalidTheory, got %v", err)
	}
	// The reference check runs before value validation.
	if _, err := r.Vote(3, 5, "voter1"); !errors.Is(err, ErrInvalidTheory) {
		t.Fatalf("expected ErrInvalidTheory for unknown id with bad value, got %v", err)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidTheory to be an invalid input error")
	}
}

func TestUpdateStatusByAuthority(t *testing.T) {
	r := newTheoryRegistry(t)
	id, _ := r.Submit("Loop Quantum Gravity", "A theory of quantum spacetime", 4, "researcher3")

	ok, err := r.UpdateStatus(id, domain.StatusApproved, domain.DefaultStatusAuthority)
	if err != nil || !ok {
		t.Fatalf("update status: ok=%v err=%v", ok, err)
	}
	th, _, _ := r.Theory(id)
	if th.Status != domain.StatusApproved {
		t.Fatalf("status = %q, want approved", th.Status)
	}

	// Labels outside the known set are stored verbatim.
	if _, err := r.UpdateStatus(id, "under-review", domain.DefaultStatusAuthority); err != nil {
		t.Fatalf("free-form status: %v", err)
	}
	th, _, _ = r.Theory(id)
	if th.Status != "under-review" {
		t.Fatalf("status = %q, want under-review", th.Status)
	}
}

func TestUpdateStatusRejectsOthers(t *testing.T) {
	r := newTheoryRegistry(t)
	id, _ := r.Submit("Causal Dynamical Triangulations", "A theory of quantum gravity", 4, "researcher5")

	for _, updater := range []string{"unauthorized_user", "researcher5", ""} {
		ok, err := r.UpdateStatus(id, domain.StatusApproved, updater)
		if !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("updater %q: expected ErrNotAuthorized, got %v", updater, err)
		}
		if ok {
			t.Fatalf("updater %q: rejected update returned true", updater)
		}
	}
	th, _, _ := r.Theory(id)
	if th.Status != domain.StatusPending {
		t.Fatalf("status = %q, want pending", th.Status)
	}
}

func TestUpdateStatusUnknownTheory(t *testing.T) {
	r := newTheoryRegistry(t)

	if _, err := r.UpdateStatus(9, domain.StatusApproved, domain.DefaultStatusAuthority); !errors.Is(err, ErrInvalidTheory) {
		t.Fatalf("expected ErrInvalidTheory, got %v", err)
	}
	// Existence is checked before authorization.
	if _, err := r.UpdateStatus(9, domain.StatusApproved, "unauthorized_user"); !errors.Is(err, ErrInvalidTheory) {
		t.Fatalf("expected ErrInvalidTheory before authorization, got %v", err)
	}
}

func TestCustomAuthorityAndInitialStatus(t *testing.T) {
	r := newTheoryRegistry(t,
		WithStatusAuthority("curator"),
		WithInitialStatus("draft"),
	)
	if r.StatusAuthority() != "curator" {
		t.Fatalf("authority = %q, want curator", r.StatusAuthority())
	}
	id, _ := r.Submit("Twistor Theory", "", 4, "researcher6")
	th, _, _ := r.Theory(id)
	if th.Status != "draft" {
		t.Fatalf("initial status = %q, want draft", th.Status)
	}
	if _, err := r.UpdateStatus(id, domain.StatusApproved, domain.DefaultStatusAuthority); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("default authority should be rejected, got %v", err)
	}
	if _, err := r.UpdateStatus(id, domain.StatusApproved, "curator"); err != nil {
		t.Fatalf("curator update: %v", err)
	}
}

func TestTheoryResetClearsBallots(t *testing.T) {
	s := store.NewMemoryStore()
	r := newTheoryRegistry(t, WithTheoryStore(s))
	id, _ := r.Submit("A", "", 4, "r1")
	_, _ = r.Vote(id, 1, "voterA")

	if err := r.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	id, _ = r.Submit("B", "", 4, "r2")
	if id != 1 {
		t.Fatalf("id after reset = %d, want 1", id)
	}
	if _, err := r.Vote(id, 1, "voterA"); err != nil {
		t.Fatalf("vote after reset: %v", err)
	}
	// A stale ballot would have produced a zero delta here.
	if got := mustTally(t, r, id); got != 1 {
		t.Fatalf("tally = %d, want 1", got)
	}
}

func TestTheoryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTheoryRegistry(t, WithMetrics(reg))
	id, _ := r.Submit("String Theory", "", 11, "researcher1")

	_, _ = r.Vote(id, 1, "voterA")
	_, _ = r.Vote(id, -1, "voterA")
	_, _ = r.Vote(id, 2, "voterB")
	_, _ = r.Vote(99, 1, "voterB")
	_, _ = r.UpdateStatus(id, domain.StatusRejected, "unauthorized_user")
	_, _ = r.UpdateStatus(id, domain.StatusRejected, domain.DefaultStatusAuthority)

	if got := testutil.ToFloat64(r.metrics.submitted); got != 1 {
		t.Fatalf("submitted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.metrics.votes); got != 2 {
		t.Fatalf("votes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.metrics.votesRejected.WithLabelValues(reasonInvalidVote)); got != 1 {
		t.Fatalf("invalid vote rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.metrics.votesRejected.WithLabelValues(reasonInvalidTheory)); got != 1 {
		t.Fatalf("invalid theory rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.metrics.tally.WithLabelValues("1")); got != -1 {
		t.Fatalf("tally gauge = %v, want -1", got)
	}
	if got := testutil.ToFloat64(r.metrics.statusRejected.WithLabelValues(reasonNotAuthorized)); got != 1 {
		t.Fatalf("status rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.metrics.statusUpdates); got != 1 {
		t.Fatalf("status updates = %v, want 1", got)
	}
}

func TestRegistriesShareOneMetricsRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := store.NewMemoryStore()
	constructs := NewConstructRegistry(WithLogger(quietLogger()), WithMetrics(reg), WithConstructStore(s))
	theories := NewTheoryRegistry(WithLogger(quietLogger()), WithMetrics(reg), WithTheoryStore(s))

	cid, _ := constructs.Mint("Hypercube", "", 4, "", "creator1")
	tid, _ := theories.Submit("String Theory", "", 11, "researcher1")
	if cid != 1 || tid != 1 {
		t.Fatalf("ids = %d/%d, want 1/1", cid, tid)
	}
}
