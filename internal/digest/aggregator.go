// package digest groups a batch of event records into one digest per
// project. It is a pure event-grouping transform: no owners or recipients
// are computed here.
package digest

import (
	"github.com/notifyhq/recipient-router/internal/domain"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Record is one (event, triggering rules) pair entering a digest.
type Record struct {
	Event   domain.Event
	RuleIDs []string
}

// Aggregate groups records by issue, unions the triggering rule IDs per
// issue and counts events. Groups keep the insertion order of the first
// record seen per issue, so digest composition is deterministic for a
// given batch. The first record per issue becomes the group's
// representative event.
//
// A batch that turns out to be a single event for a single issue still
// produces a correct one-group digest; preferring the immediate
// single-event notification path over a digest is the caller's decision.
func Aggregate(projectID string, records []Record) *domain.Digest {
	d := &domain.Digest{ProjectID: projectID}

	index := make(map[string]int)
	rules := make(map[string]sets.String)

	for _, record := range records {
		issueID := record.Event.IssueID

		i, ok := index[issueID]
		if !ok {
			i = len(d.Groups)
			index[issueID] = i
			rules[issueID] = sets.NewString()
			d.Groups = append(d.Groups, domain.DigestGroup{
				IssueID:        issueID,
				Representative: record.Event,
			})
		}

		rules[issueID].Insert(record.RuleIDs...)
		d.Groups[i].EventCount++
		d.TotalEvents++
	}

	for i := range d.Groups {
		d.Groups[i].RulesTriggered = rules[d.Groups[i].IssueID].List()
	}
	d.TotalIssues = len(d.Groups)

	return d
}
