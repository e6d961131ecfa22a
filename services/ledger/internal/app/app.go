package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"dimledger/internal/util"
	"dimledger/pkg/domain"
	"dimledger/pkg/registry"
	"dimledger/pkg/store"
)

// Config holds runtime configuration for the scenario runner.
type Config struct {
	StatusAuthority string
	InitialStatus   string
	Logger          *slog.Logger
	PromRegistry    prometheus.Registerer
	Clock           func() time.Time
}

// App runs scenarios against one pair of registries, resetting them between
// cases.
type App struct {
	constructs *registry.ConstructRegistry
	theories   *registry.TheoryRegistry
}

// New wires both registries over a shared in-memory store.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := []registry.Option{
		registry.WithLogger(logger),
		registry.WithMetrics(cfg.PromRegistry),
	}
	if cfg.Clock != nil {
		opts = append(opts, registry.WithClock(cfg.Clock))
	}
	if cfg.StatusAuthority != "" {
		opts = append(opts, registry.WithStatusAuthority(cfg.StatusAuthority))
	}
	if cfg.InitialStatus != "" {
		opts = append(opts, registry.WithInitialStatus(domain.TheoryStatus(cfg.InitialStatus)))
	}
	s := store.NewMemoryStore()
	opts = append(opts, registry.WithConstructStore(s), registry.WithTheoryStore(s))
	return &App{
		constructs: registry.NewConstructRegistry(opts...),
		theories:   registry.NewTheoryRegistry(opts...),
	}
}

// Report is the outcome of one scenario run.
type Report struct {
	RunID    string       `json:"runId"`
	Scenario string       `json:"scenario"`
	Cases    []CaseResult `json:"cases"`
}

type CaseResult struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
}

// Passed reports whether every case passed.
func (r Report) Passed() bool {
	for _, c := range r.Cases {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Counts returns the number of passed and failed cases.
func (r Report) Counts() (passed, failed int) {
	for _, c := range r.Cases {
		if c.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Run executes every case of sc. Expectation mismatches are recorded in the
// report; the returned error is reserved for cancellation and registry
// failures. Case outcomes are logged through the logger carried by ctx.
func (a *App) Run(ctx context.Context, sc Scenario) (Report, error) {
	runID := util.NewRunID()
	logger := util.LoggerFromContext(ctx).With("run_id", runID, "scenario", sc.Name)
	report := Report{RunID: runID, Scenario: sc.Name}
	run := caseRunner{
		constructs: a.constructs.UsingLogger(logger),
		theories:   a.theories.UsingLogger(logger),
	}

	for _, c := range sc.Cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := a.reset(); err != nil {
			return report, err
		}
		res := CaseResult{Name: c.Name}
		for i, step := range c.Steps {
			failures, err := run.step(step)
			if err != nil {
				return report, fmt.Errorf("case %q step %d: %w", c.Name, i+1, err)
			}
			for _, f := range failures {
				res.Failures = append(res.Failures, fmt.Sprintf("step %d (%s): %s", i+1, step.Op, f))
			}
		}
		res.Passed = len(res.Failures) == 0
		if res.Passed {
			logger.Info("case passed", "case", c.Name)
		} else {
			logger.Warn("case failed", "case", c.Name, "failures", res.Failures)
		}
		report.Cases = append(report.Cases, res)
	}
	passed, failed := report.Counts()
	logger.Info("scenario finished", "passed", passed, "failed", failed)
	return report, nil
}

func (a *App) reset() error {
	if err := a.constructs.Reset(); err != nil {
		return err
	}
	return a.theories.Reset()
}

// caseRunner executes steps against registry views that log with the run's
// logger.
type caseRunner struct {
	constructs *registry.ConstructRegistry
	theories   *registry.TheoryRegistry
}

// step performs one call and returns the expectation mismatches.
func (r caseRunner) step(step Step) ([]string, error) {
	var (
		id     int64
		ok     bool
		opErr  error
		target = step.ID
	)
	switch step.Op {
	case OpMint:
		id, opErr = r.constructs.Mint(step.Name, step.Description, step.Dimensions, step.VisualizationURL, step.Creator)
		ok = opErr == nil
		target = id
	case OpTransfer:
		ok, opErr = r.constructs.Transfer(step.ID, step.Sender, step.Recipient)
	case OpSubmit:
		id, opErr = r.theories.Submit(step.Title, step.Description, step.Dimensions, step.Creator)
		ok = opErr == nil
		target = id
	case OpVote:
		ok, opErr = r.theories.Vote(step.ID, step.Value, step.Voter)
	case OpUpdateStatus:
		ok, opErr = r.theories.UpdateStatus(step.ID, domain.TheoryStatus(step.Status), step.Updater)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)
	}
	return r.check(step, target, id, ok, opErr)
}

func (r caseRunner) check(step Step, target, id int64, ok bool, opErr error) ([]string, error) {
	var failures []string
	exp := step.Expect

	switch {
	case exp.Error != "":
		if opErr == nil {
			failures = append(failures, fmt.Sprintf("expected error %q, got success", exp.Error))
		} else if !strings.Contains(strings.ToLower(opErr.Error()), strings.ToLower(exp.Error)) {
			failures = append(failures, fmt.Sprintf("expected error %q, got %q", exp.Error, opErr.Error()))
		}
	case opErr != nil:
		failures = append(failures, fmt.Sprintf("unexpected error: %v", opErr))
	}
	if exp.OK != nil && *exp.OK != ok {
		failures = append(failures, fmt.Sprintf("ok = %v, want %v", ok, *exp.OK))
	}
	if exp.ID != nil && *exp.ID != id {
		failures = append(failures, fmt.Sprintf("id = %d, want %d", id, *exp.ID))
	}
	if exp.Owner != nil {
		owner, _, err := r.constructs.OwnerOf(target)
		if err != nil {
			return nil, err
		}
		if owner != *exp.Owner {
			failures = append(failures, fmt.Sprintf("owner = %q, want %q", owner, *exp.Owner))
		}
	}
	if exp.Tally != nil || exp.Status != nil {
		th, found, err := r.theories.Theory(target)
		if err != nil {
			return nil, err
		}
		switch {
		case !found:
			failures = append(failures, fmt.Sprintf("theory %d not found", target))
		default:
			if exp.Tally != nil && th.Votes != *exp.Tally {
				failures = append(failures, fmt.Sprintf("tally = %d, want %d", th.Votes, *exp.Tally))
			}
			if exp.Status != nil && string(th.Status) != *exp.Status {
				failures = append(failures, fmt.Sprintf("status = %q, want %q", th.Status, *exp.Status))
			}
		}
	}
	return failures, nil
}

// WriteReport prints one line per case followed by a summary.
func WriteReport(w io.Writer, r Report) error {
	for _, c := range r.Cases {
		if c.Passed {
			if _, err := fmt.Fprintf(w, "PASS %s\n", c.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "FAIL %s\n", c.Name); err != nil {
			return err
		}
		for _, f := range c.Failures {
			if _, err := fmt.Fprintf(w, "    %s\n", f); err != nil {
				return err
			}
		}
	}
	passed, failed := r.Counts()
	_, err := fmt.Fprintf(w, "%s: %d passed, %d failed (run %s)\n", r.Scenario, passed, failed, r.RunID)
	return err
}

// WriteMetrics dumps every gathered metric family in the Prometheus text
// exposition format.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
