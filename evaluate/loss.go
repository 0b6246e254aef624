package evaluate

import (
	"fmt"
	"math"

	"github.com/sky-flux/fsrs45"
)

const bceClamp = 1e-7

// numBins is the number of equal-width retrievability buckets in the
// calibration table.
const numBins = 10

// bceLoss computes the binary cross-entropy loss: -[y*ln(p) + (1-y)*ln(1-p)].
// rPred is clamped to [bceClamp, 1-bceClamp] to avoid log(0).
func bceLoss(rPred, y float64) float64 {
	p := math.Max(bceClamp, math.Min(rPred, 1-bceClamp))
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// binIndex maps a retrievability in [0, 1] to its calibration bucket.
func binIndex(r float64) int {
	i := int(r * numBins)
	if i >= numBins {
		i = numBins - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// tally accumulates prediction errors. Tallies are summed in card ID order so
// the totals do not depend on scheduling of the workers.
type tally struct {
	count     int
	loss      float64
	sqErr     float64
	predicted float64
	recalled  float64
	bins      [numBins]binTally
}

type binTally struct {
	count     int
	predicted float64
	recalled  float64
}

func (t *tally) add(rPred, y float64) {
	t.count++
	t.loss += bceLoss(rPred, y)
	t.sqErr += (rPred - y) * (rPred - y)
	t.predicted += rPred
	t.recalled += y

	b := &t.bins[binIndex(rPred)]
	b.count++
	b.predicted += rPred
	b.recalled += y
}

func (t *tally) merge(o tally) {
	t.count += o.count
	t.loss += o.loss
	t.sqErr += o.sqErr
	t.predicted += o.predicted
	t.recalled += o.recalled
	for i := range t.bins {
		t.bins[i].count += o.bins[i].count
		t.bins[i].predicted += o.bins[i].predicted
		t.bins[i].recalled += o.bins[i].recalled
	}
}

// replayCard schedules one card's history from Unseen and scores the
// retrievability predicted before each cross-day review.
func replayCard(reviews []review) (tally, error) {
	var t tally
	var st fsrs45.ReviewState

	for _, rev := range reviews {
		if !rev.grade.IsValid() {
			return tally{}, fmt.Errorf("%w: %d", fsrs45.ErrInvalidGrade, int(rev.grade))
		}
		if rev.scored {
			t.add(fsrs45.CurrentRetrievability(st, rev.reviewedAt), rev.recalled)
		}
		st = fsrs45.Schedule(st, rev.grade, rev.reviewedAt)
	}
	return t, nil
}
