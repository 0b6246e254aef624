package evaluate

import (
	"maps"
	"slices"
	"time"

	"github.com/sky-flux/fsrs45"
)

// minGapDays is the shortest gap after which a review is scored. Same-day
// repeats say little about long-term recall.
const minGapDays = 1.0

// review is one graded event in a card's history, prepared for scoring.
type review struct {
	grade      fsrs45.Grade
	reviewedAt time.Time
	gapDays    float64 // since the card's previous review
	recalled   float64 // outcome the prediction is scored against
	scored     bool    // a prediction exists and the gap spans a day
}

// cardHistories splits logs into per-card histories in review order. Logs
// with equal timestamps keep their input order.
func cardHistories(logs []fsrs45.ReviewLog) map[string][]review {
	byCard := make(map[string][]fsrs45.ReviewLog)
	for _, l := range logs {
		byCard[l.CardID] = append(byCard[l.CardID], l)
	}

	histories := make(map[string][]review, len(byCard))
	for id, cardLogs := range byCard {
		slices.SortStableFunc(cardLogs, func(a, b fsrs45.ReviewLog) int {
			return a.ReviewedAt.Compare(b.ReviewedAt)
		})

		h := make([]review, len(cardLogs))
		for i, l := range cardLogs {
			h[i] = review{grade: l.Grade, reviewedAt: l.ReviewedAt, recalled: recallOutcome(l.Grade)}
			if i > 0 {
				h[i].gapDays = l.ReviewedAt.Sub(cardLogs[i-1].ReviewedAt).Hours() / 24
				h[i].scored = h[i].gapDays >= minGapDays
			}
		}
		histories[id] = h
	}
	return histories
}

// recallOutcome is 0 for a lapse and 1 for any passing grade.
func recallOutcome(g fsrs45.Grade) float64 {
	if g == fsrs45.Again {
		return 0
	}
	return 1
}

// scoredReviews counts the reviews Evaluate compares against a prediction.
func scoredReviews(histories map[string][]review) int {
	n := 0
	for _, h := range histories {
		for _, r := range h {
			if r.scored {
				n++
			}
		}
	}
	return n
}

// sortedCardIDs fixes the merge order so reports do not depend on scheduling.
func sortedCardIDs(histories map[string][]review) []string {
	return slices.Sorted(maps.Keys(histories))
}
