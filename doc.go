// Package fsrs45 implements the FSRS-4.5 spaced repetition memory model.
//
// The package is a pure scheduling core: given a card's prior [ReviewState],
// a [Grade] and the review time, [Schedule] returns the card's next state
// (stability, difficulty and due time). It holds no state between calls and
// performs no I/O, so it is safe for concurrent use. Persisting states and
// choosing which card to study next are left to the caller.
//
// Basic usage:
//
//	var st fsrs45.ReviewState // unseen
//	st = fsrs45.Schedule(st, fsrs45.Good, time.Now())
//	mem, _ := st.Memory()
//	fmt.Println(mem.Stability, mem.DueAt)
package fsrs45
