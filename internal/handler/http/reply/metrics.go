package reply

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"reply-relay/internal/domain/entity"
)

// Reply outcomes used as metric label values.
const (
	outcomeReply      = "reply"
	outcomeMissingKey = "missing_key"
	outcomeError      = "error"
)

var replyOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reply_outcomes_total",
		Help: "Replies returned by /process-html by outcome (reply, missing_key, error)",
	},
	[]string{"outcome"},
)

func recordOutcome(r entity.Reply, err error) {
	switch {
	case err != nil:
		replyOutcomesTotal.WithLabelValues(outcomeError).Inc()
	case !r.KeyFound:
		replyOutcomesTotal.WithLabelValues(outcomeMissingKey).Inc()
	default:
		replyOutcomesTotal.WithLabelValues(outcomeReply).Inc()
	}
}
