package fsrs45

import "math"

const (
	msPerDay = 86_400_000
	// minIntervalDays is the shortest interval ever scheduled.
	minIntervalDays = 0.01
	minIntervalMS   = minIntervalDays * msPerDay
)

// model evaluates the FSRS-4.5 formulas against a fixed weight table.
type model struct {
	w Weights
}

// fsrs is the model used by Schedule. Weights are fixed per model version.
var fsrs = model{w: defaultWeights}

// Retrievability computes R(t, S) = (1 + FACTOR * t / S) ^ DECAY, the
// probability of recall after elapsedDays for a memory of stability S.
// It returns 0 when S is non-finite or not positive.
func Retrievability(elapsedDays, stability float64) float64 {
	if math.IsNaN(stability) || math.IsInf(stability, 0) || stability <= 0 {
		return 0
	}
	return math.Pow(1+Factor*elapsedDays/stability, Decay)
}

// IntervalForRetrievability is the inverse of Retrievability: the number of
// days after which a memory of stability S decays to retrievability r.
// I(r, S) = (S / FACTOR) * (r^(1/DECAY) - 1)
func IntervalForRetrievability(r, stability float64) float64 {
	return stability / Factor * (math.Pow(r, 1/Decay) - 1)
}

// initStability returns S₀(G) = w[G-1].
func (m *model) initStability(g Grade) float64 {
	return m.w[g-1]
}

// initDifficulty returns D₀(G) = clamp(w[4] - (G-3)*w[5], 1, 10).
func (m *model) initDifficulty(g Grade) float64 {
	return clampD(m.w[4] - float64(g-3)*m.w[5])
}

// nextDifficulty regresses the grade-shifted difficulty toward w[7]*w[4].
// D' = clamp(w[7]*w[4] + (1-w[7]) * (D - w[6]*(G-3)), 1, 10)
func (m *model) nextDifficulty(d float64, g Grade) float64 {
	shifted := d - m.w[6]*float64(g-3)
	return clampD(m.w[7]*m.w[4] + (1-m.w[7])*shifted)
}

// nextStability dispatches to the recall or the lapse formula.
func (m *model) nextStability(d, s, r float64, g Grade) float64 {
	if usesLapseStability(g) {
		return m.lapseStability(d, s, r)
	}
	return m.recallStability(d, s, r, g)
}

// recallStability computes stability after a successful recall.
// SInc = e^w[8] * (11-D) * S^(-w[9]) * (e^(w[10]*(1-R)) - 1) * hardPenalty * easyBonus
// S'  = S * max(1, SInc + 1)
//
// Only Good and Easy reach this branch; the Hard penalty is kept so the
// formula matches the reference layout.
func (m *model) recallStability(d, s, r float64, g Grade) float64 {
	hardPenalty := 1.0
	if g == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if g == Easy {
		easyBonus = m.w[16]
	}
	inc := math.Exp(m.w[8]) *
		(11 - d) *
		math.Pow(s, -m.w[9]) *
		(math.Exp(m.w[10]*(1-r)) - 1) *
		hardPenalty * easyBonus
	return s * math.Max(1, inc+1)
}

// lapseStability computes stability after Again or Hard.
// S' = w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^(w[14]*(1-R))
func (m *model) lapseStability(d, s, r float64) float64 {
	return m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp(m.w[14]*(1-r))
}

// intervalDays returns the days until S decays to TargetRetention,
// floored at minIntervalDays.
func intervalDays(stability float64) float64 {
	return math.Max(minIntervalDays, IntervalForRetrievability(TargetRetention, stability))
}

// addDays returns nowMS plus days in whole milliseconds, saturating at
// math.MaxInt64.
func addDays(nowMS int64, days float64) int64 {
	ms := days * msPerDay
	if ms >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	iv := int64(ms)
	if nowMS > 0 && iv > math.MaxInt64-nowMS {
		return math.MaxInt64
	}
	return nowMS + iv
}

// usesLapseStability reports whether g is scored with the forgetting branch.
func usesLapseStability(g Grade) bool {
	return g < Good
}

// countsAsLapse reports whether g increments the lapse counter.
func countsAsLapse(g Grade) bool {
	return g == Again
}

// clampD clamps difficulty to [1, 10].
func clampD(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}

// clampR clamps retrievability to [0, 1].
func clampR(r float64) float64 {
	return math.Min(math.Max(r, 0), 1)
}
