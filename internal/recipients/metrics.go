package recipients

import (
	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for issue-owners resolution.
const (
	outcomeMatch    = "match"    // at least one rule matched
	outcomeEveryone = "everyone" // no match, fallthrough to all project members
	outcomeEmpty    = "empty"    // no match, no fallthrough
)

var resolutionOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ownership_resolution_outcomes_total",
		Help: "Ownership resolution outcomes for issue-owners targets",
	},
	[]string{"outcome"},
)

func observeResolution(resolved domain.ResolvedOwners) {
	switch {
	case resolved.UsedFallthrough:
		resolutionOutcomes.WithLabelValues(outcomeEveryone).Inc()
	case len(resolved.Owners) > 0:
		resolutionOutcomes.WithLabelValues(outcomeMatch).Inc()
	default:
		resolutionOutcomes.WithLabelValues(outcomeEmpty).Inc()
	}
}
