// Package evaluate measures how well the FSRS-4.5 model predicts recall on a
// recorded review history.
//
// Each card's logs are replayed through [fsrs45.Schedule] from the Unseen
// state. Before every cross-day review (at least one day after the previous
// one) the model's retrievability is compared with the outcome: Again counts
// as forgotten, any other grade as recalled. The comparison is summarized as
// binary cross-entropy (log loss), RMSE and a calibration table.
//
// # Usage
//
//	ev := evaluate.New(evaluate.Config{Workers: 4})
//	report, err := ev.Evaluate(ctx, logs)
//
// Cards are replayed concurrently; the result does not depend on the number
// of workers.
package evaluate
