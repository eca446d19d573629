// Package dedup implements fuzzy duplicate detection over stored leads.
package dedup

import (
	"context"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// Matcher flags an inbound message as a duplicate when both its sender
// and subject are close enough to those of an already stored lead. The
// comparison is strict: a similarity exactly at a threshold does not
// match.
type Matcher struct {
	senderThreshold  float64
	subjectThreshold float64
}

// NewMatcher creates a matcher with similarity thresholds on a 0-100
// scale. Defaults used by the pipeline are 80 for sender and 70 for
// subject.
func NewMatcher(senderThreshold, subjectThreshold float64) *Matcher {
	return &Matcher{
		senderThreshold:  senderThreshold,
		subjectThreshold: subjectThreshold,
	}
}

// Similarity returns the case-folded Levenshtein similarity of two
// strings on a 0-100 scale. Two empty strings are fully similar.
func Similarity(a, b string) float64 {
	folder := cases.Fold()
	return levenshtein.Similarity(folder.String(a), folder.String(b), nil) * 100
}

// Match scans the snapshot in order and returns the first lead whose
// sender similarity exceeds the sender threshold and whose subject
// similarity exceeds the subject threshold. Both must exceed, not meet,
// their thresholds.
func (m *Matcher) Match(ctx context.Context, msg *core.InboundMessage, existing []core.Lead) (*core.MatchResult, error) {
	for i := range existing {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lead := &existing[i]
		senderSim := Similarity(msg.Sender, lead.Sender)
		if senderSim <= m.senderThreshold {
			continue
		}
		subjectSim := Similarity(msg.Subject, lead.Subject)
		if subjectSim <= m.subjectThreshold {
			continue
		}

		return &core.MatchResult{
			Duplicate:         true,
			LeadID:            lead.ID,
			SenderSimilarity:  senderSim,
			SubjectSimilarity: subjectSim,
		}, nil
	}

	return &core.MatchResult{}, nil
}
