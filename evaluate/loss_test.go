package evaluate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sky-flux/fsrs45"
)

func assertFloatEval(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-4 {
		t.Errorf("%s = %.6f, want %.6f", name, got, want)
	}
}

func TestBceLoss(t *testing.T) {
	tests := []struct {
		name string
		p, y float64
		want float64
	}{
		{"recalled", 0.9, 1, 0.10536},
		{"forgotten", 0.9, 0, 2.30259},
		{"half", 0.5, 1, 0.69315},
	}
	for _, tt := range tests {
		assertFloatEval(t, tt.name, bceLoss(tt.p, tt.y), tt.want)
	}
}

func TestBceLossClamped(t *testing.T) {
	for _, p := range []float64{0, 1} {
		for _, y := range []float64{0, 1} {
			got := bceLoss(p, y)
			if math.IsInf(got, 0) || math.IsNaN(got) {
				t.Errorf("bceLoss(%v, %v) = %v, should be finite", p, y, got)
			}
		}
	}
}

func TestBinIndex(t *testing.T) {
	tests := []struct {
		r    float64
		want int
	}{
		{0, 0}, {0.05, 0}, {0.1, 1}, {0.55, 5}, {0.9, 9}, {0.99, 9}, {1, 9}, {-0.2, 0},
	}
	for _, tt := range tests {
		if got := binIndex(tt.r); got != tt.want {
			t.Errorf("binIndex(%v) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestReplayCardScoresOnlyCrossDay(t *testing.T) {
	reviews := cardHistories([]fsrs45.ReviewLog{
		{CardID: "a", Grade: fsrs45.Good, ReviewedAt: t0},
		{CardID: "a", Grade: fsrs45.Good, ReviewedAt: t0.Add(3 * time.Hour)},
		{CardID: "a", Grade: fsrs45.Again, ReviewedAt: t0.Add(5 * 24 * time.Hour)},
	})["a"]

	got, err := replayCard(reviews)
	if err != nil {
		t.Fatalf("replayCard: %v", err)
	}
	if got.count != 1 {
		t.Fatalf("count = %d, want 1", got.count)
	}

	st := fsrs45.Schedule(fsrs45.ReviewState{}, fsrs45.Good, t0)
	st = fsrs45.Schedule(st, fsrs45.Good, t0.Add(3*time.Hour))
	r := fsrs45.CurrentRetrievability(st, t0.Add(5*24*time.Hour))
	assertFloatEval(t, "loss", got.loss, bceLoss(r, 0))
	assertFloatEval(t, "predicted", got.predicted, r)
	if got.recalled != 0 {
		t.Errorf("recalled = %v, want 0", got.recalled)
	}
}

func TestReplayCardInvalidGrade(t *testing.T) {
	reviews := []review{{grade: fsrs45.Grade(9), reviewedAt: t0}}
	if _, err := replayCard(reviews); !errors.Is(err, fsrs45.ErrInvalidGrade) {
		t.Errorf("err = %v, want ErrInvalidGrade", err)
	}
}

func TestTallyMerge(t *testing.T) {
	var a, b tally
	a.add(0.9, 1)
	b.add(0.3, 0)
	b.add(0.35, 1)
	a.merge(b)
	if a.count != 3 {
		t.Errorf("count = %d, want 3", a.count)
	}
	if a.bins[9].count != 1 || a.bins[3].count != 2 {
		t.Errorf("bins = %+v", a.bins)
	}
	assertFloatEval(t, "recalled", a.recalled, 2)
}
