package fsrs45

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Schedule applies one review with the given grade at time now and returns
// the card's next state. The prior state is not modified.
//
// An Unseen prior is initialized from the grade; a Reviewed prior is updated
// from its stability, difficulty and the time elapsed since its last review.
// A review dated before the last one is treated as zero elapsed time.
// now is truncated to whole milliseconds. A due time past the largest
// representable Unix millisecond is clamped to it.
//
// grade must be valid; Schedule panics otherwise. Callers validate untrusted
// input with ParseGrade or Grade.IsValid.
func Schedule(prior ReviewState, grade Grade, now time.Time) ReviewState {
	if !grade.IsValid() {
		panic(fmt.Sprintf("fsrs45: Schedule called with %v", grade))
	}
	nowMS := now.UnixMilli()

	var next Memory
	if prior.mem == nil {
		next = Memory{
			Stability:   fsrs.initStability(grade),
			Difficulty:  fsrs.initDifficulty(grade),
			ReviewCount: 1,
		}
	} else {
		p := prior.mem
		elapsedDays := math.Max(0, float64(nowMS-p.LastReviewedAt.UnixMilli())/msPerDay)
		r := clampR(Retrievability(elapsedDays, p.Stability))
		d := fsrs.nextDifficulty(p.Difficulty, grade)
		next = Memory{
			Stability:   fsrs.nextStability(d, p.Stability, r, grade),
			Difficulty:  d,
			ReviewCount: p.ReviewCount + 1,
			LapseCount:  p.LapseCount,
		}
	}
	if countsAsLapse(grade) {
		next.LapseCount++
	}

	next.LastReviewedAt = fromMillis(nowMS)
	next.DueAt = fromMillis(addDays(nowMS, intervalDays(next.Stability)))
	return ReviewState{mem: &next}
}

// Preview returns the state that each grade would produce at time now.
func Preview(prior ReviewState, now time.Time) map[Grade]ReviewState {
	result := make(map[Grade]ReviewState, len(Grades))
	for _, g := range Grades {
		result[g] = Schedule(prior, g, now)
	}
	return result
}

// Replay rebuilds a card's state by scheduling its review logs in time order,
// starting from Unseen. Logs are not modified.
// Returns ErrCardIDMismatch if a log belongs to another card and
// ErrInvalidGrade if a log carries an invalid grade.
func Replay(cardID string, logs []ReviewLog) (ReviewState, error) {
	sorted := make([]ReviewLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReviewedAt.Before(sorted[j].ReviewedAt)
	})

	var st ReviewState
	for _, log := range sorted {
		if log.CardID != cardID {
			return ReviewState{}, fmt.Errorf("%w: card %q, log %q", ErrCardIDMismatch, cardID, log.CardID)
		}
		if !log.Grade.IsValid() {
			return ReviewState{}, fmt.Errorf("%w: %d", ErrInvalidGrade, int(log.Grade))
		}
		st = Schedule(st, log.Grade, log.ReviewedAt)
	}
	return st, nil
}

// CurrentRetrievability returns the probability of recalling the card at
// time now. Returns 0 for an Unseen state.
func CurrentRetrievability(st ReviewState, now time.Time) float64 {
	if st.mem == nil {
		return 0
	}
	elapsedDays := math.Max(0, float64(now.UnixMilli()-st.mem.LastReviewedAt.UnixMilli())/msPerDay)
	return clampR(Retrievability(elapsedDays, st.mem.Stability))
}
