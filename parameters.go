package fsrs45

// ModelVersion identifies the memory model implemented by this package.
const ModelVersion = "fsrs-4.5"

const (
	// Decay is the exponent of the power forgetting curve.
	Decay = -0.5
	// Factor is chosen so that R(S, S) = TargetRetention.
	Factor = 19.0 / 81.0
	// TargetRetention is the retrievability at which a card falls due.
	TargetRetention = 0.90
)

// Weights holds the 17 FSRS-4.5 model weights w[0..16].
type Weights [17]float64

// defaultWeights are the FSRS-4.5 reference weights from the fsrs4anki wiki.
var defaultWeights = Weights{
	0.4872, 1.4003, 3.7145, 13.8206, // w[0..3]   initial stability S₀(G)
	5.1618, 1.2298, 0.8975, 0.031, // w[4..7]   difficulty params
	1.6474, 0.1367, 1.0461, // w[8..10]  recall stability params
	2.1072, 0.0793, 0.3246, 1.587, // w[11..14] forget stability params
	0.2272, 2.8755, // w[15..16] hard penalty, easy bonus
}

// DefaultWeights returns a copy of the FSRS-4.5 reference weights.
func DefaultWeights() Weights {
	return defaultWeights
}
