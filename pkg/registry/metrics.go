package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type constructMetrics struct {
	minted            prometheus.Counter
	transfers         prometheus.Counter
	transfersRejected prometheus.Counter
}

// A nil Registerer yields working but unregistered collectors.
func newConstructMetrics(reg prometheus.Registerer) *constructMetrics {
	factory := promauto.With(reg)
	return &constructMetrics{
		minted: factory.NewCounter(prometheus.CounterOpts{
			Name: "dimledger_constructs_minted_total",
			Help: "number of constructs minted",
		}),
		transfers: factory.NewCounter(prometheus.CounterOpts{
			Name: "dimledger_construct_transfers_total",
			Help: "number of successful construct transfers",
		}),
		transfersRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "dimledger_construct_transfers_rejected_total",
			Help: "number of construct transfers rejected as unauthorized",
		}),
	}
}

type theoryMetrics struct {
	submitted      prometheus.Counter
	votes          prometheus.Counter
	votesRejected  *prometheus.CounterVec
	tally          *prometheus.GaugeVec
	statusUpdates  prometheus.Counter
	statusRejected *prometheus.CounterVec
}

func newTheoryMetrics(reg prometheus.Registerer) *theoryMetrics {
	factory := promauto.With(reg)
	return &theoryMetrics{
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "dimledger_theories_submitted_total",
			Help: "number of theories submitted",
		}),
		votes: factory.NewCounter(prometheus.CounterOpts{
			Name: "dimledger_theory_votes_total",
			Help: "number of accepted votes, including repeats",
		}),
		votesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dimledger_theory_votes_rejected_total",
			Help: "number of rejected votes by reason",
		}, []string{"reason"}),
		tally: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dimledger_theory_vote_tally",
			Help: "current vote tally per theory",
		}, []string{"theory"}),
		statusUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "dimledger_theory_status_updates_total",
			Help: "number of successful theory status updates",
		}),
		statusRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dimledger_theory_status_updates_rejected_total",
			Help: "number of rejected theory status updates by reason",
		}, []string{"reason"}),
	}
}

const (
	reasonInvalidTheory = "invalid_theory"
	reasonInvalidVote   = "invalid_vote"
	reasonNotAuthorized = "not_authorized"
)
