// Package gate scores a composed digest draft against fixed editorial
// checks and rejects drafts that fall below the acceptance bar. The gate
// never edits a draft: the accepted text is byte-identical to the input,
// and there is no retry path.
package gate

import (
	"fmt"
	"strings"

	"filing_digest/pkg/models"
)

// AcceptThreshold is the minimum total (out of 35) an accepted draft
// needs across the seven checks.
const AcceptThreshold = 28

// RejectionError carries the full scorecard of a failed draft.
type RejectionError struct {
	Scorecard models.Scorecard
	Reason    string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("draft rejected: %s (score %d/35)", e.Reason, e.Scorecard.Total)
}

// Evaluate scores the draft. Acceptance returns the input unchanged with
// its scorecard; rejection returns a RejectionError carrying the same
// scorecard.
func Evaluate(draft string) (string, models.Scorecard, error) {
	sc := scoreDraft(draft)

	if hasDegenerateHeading(draft) {
		return "", sc, &RejectionError{Scorecard: sc, Reason: "empty section heading"}
	}
	if sc.Total < AcceptThreshold {
		return "", sc, &RejectionError{Scorecard: sc, Reason: "total below acceptance bar"}
	}
	return draft, sc, nil
}

// scoreDraft applies the seven checks. Each is a plain text probe, so a
// byte-identical draft always scores identically.
func scoreDraft(draft string) models.Scorecard {
	var sc models.Scorecard
	wc := gateWordCount(draft)

	// Placeholder text means an extraction hole leaked into prose.
	if strings.Contains(draft, "Not disclosed") {
		sc.Accuracy = 0
	} else {
		sc.Accuracy = 5
	}

	if wc > 150 {
		sc.Clarity = 4
	} else {
		sc.Clarity = 3
	}

	if strings.Count(draft, "$") >= 3 {
		sc.InsightDensity = 4
	} else {
		sc.InsightDensity = 3
	}

	if strings.Contains(draft, "..") {
		sc.NumericalPrecision = 2
	} else {
		sc.NumericalPrecision = 4
	}

	if strings.Count(draft, "Executive Summary") == 1 {
		sc.NarrativeFlow = 4
	} else {
		sc.NarrativeFlow = 3
	}

	if strings.Count(draft, "##") >= 2 {
		sc.SectionBalance = 4
	} else {
		sc.SectionBalance = 2
	}

	switch {
	case wc >= 200 && wc <= 300:
		sc.Brevity = 5
	case wc < 200:
		sc.Brevity = 3
	default:
		sc.Brevity = 2
	}

	sc.Total = sc.Accuracy + sc.Clarity + sc.InsightDensity +
		sc.NumericalPrecision + sc.NarrativeFlow + sc.SectionBalance + sc.Brevity
	return sc
}

// gateWordCount counts whitespace tokens, discarding bare heading
// markers. Bullet dashes count as tokens here, unlike the composer's
// own counter.
func gateWordCount(s string) int {
	n := 0
	for _, tok := range strings.Fields(s) {
		if tok == "##" {
			continue
		}
		n++
	}
	return n
}

// hasDegenerateHeading reports a heading marker with no title text.
func hasDegenerateHeading(draft string) bool {
	for _, line := range strings.Split(draft, "\n") {
		if strings.TrimSpace(line) == "##" {
			return true
		}
	}
	return false
}
