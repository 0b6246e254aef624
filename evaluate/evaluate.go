package evaluate

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/sky-flux/fsrs45"
)

var (
	// ErrEmptyLogs is returned when no review logs are provided.
	ErrEmptyLogs = errors.New("evaluate: no review logs provided")

	// ErrNoCrossDayReviews is returned when no review happened at least one
	// day after the previous review of the same card.
	ErrNoCrossDayReviews = errors.New("evaluate: no cross-day reviews to score")
)

// Config configures an Evaluator.
// Zero values are replaced with defaults.
type Config struct {
	Workers int `json:"workers"` // default 4
}

// Evaluator scores the fixed FSRS-4.5 model against review histories.
type Evaluator struct {
	workers int
}

// New creates an Evaluator. A zero Workers value defaults to 4.
func New(cfg Config) *Evaluator {
	e := &Evaluator{workers: cfg.Workers}
	if e.workers <= 0 {
		e.workers = 4
	}
	return e
}

// Bin is one row of the calibration table: the reviews whose predicted
// retrievability fell in [Lower, Upper).
type Bin struct {
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	Count         int     `json:"count"`
	MeanPredicted float64 `json:"mean_predicted"`
	MeanRecalled  float64 `json:"mean_recalled"`
}

// Report summarizes the model's predictions over a review history.
type Report struct {
	Model           string  `json:"model"`
	Cards           int     `json:"cards"`
	Reviews         int     `json:"reviews"`
	CrossDayReviews int     `json:"cross_day_reviews"`
	LogLoss         float64 `json:"log_loss"`
	RMSE            float64 `json:"rmse"`
	MeanPredicted   float64 `json:"mean_predicted"`
	MeanRecalled    float64 `json:"mean_recalled"`
	Bins            []Bin   `json:"bins"`
}

// Evaluate replays logs card by card and reports how well the predicted
// retrievability matched the recorded outcomes.
//
// Returns ErrEmptyLogs if logs is empty and ErrNoCrossDayReviews (with the
// counts filled in) if nothing can be scored. A log with an invalid grade
// aborts the evaluation with fsrs45.ErrInvalidGrade. The context cancels
// pending card replays.
func (e *Evaluator) Evaluate(ctx context.Context, logs []fsrs45.ReviewLog) (Report, error) {
	if len(logs) == 0 {
		return Report{}, ErrEmptyLogs
	}

	data := cardHistories(logs)
	report := Report{
		Model:           fsrs45.ModelVersion,
		Cards:           len(data),
		Reviews:         len(logs),
		CrossDayReviews: scoredReviews(data),
	}
	if report.CrossDayReviews == 0 {
		return report, ErrNoCrossDayReviews
	}

	ids := sortedCardIDs(data)
	results := make([]tally, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := replayCard(data[id])
			if err != nil {
				return fmt.Errorf("evaluate: card %q: %w", id, err)
			}
			results[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var total tally
	for _, t := range results {
		total.merge(t)
	}

	n := float64(total.count)
	report.LogLoss = total.loss / n
	report.RMSE = math.Sqrt(total.sqErr / n)
	report.MeanPredicted = total.predicted / n
	report.MeanRecalled = total.recalled / n
	report.Bins = make([]Bin, 0, numBins)
	for i, b := range total.bins {
		if b.count == 0 {
			continue
		}
		report.Bins = append(report.Bins, Bin{
			Lower:         float64(i) / numBins,
			Upper:         float64(i+1) / numBins,
			Count:         b.count,
			MeanPredicted: b.predicted / float64(b.count),
			MeanRecalled:  b.recalled / float64(b.count),
		})
	}
	return report, nil
}
