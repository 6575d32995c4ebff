package planet

import "math"

const blendDecay = 0.8

// Neutral is the emotion assumed when nothing better is known.
var Neutral = Emotion{Valence: 0.5, Arousal: 0.5}

// BlendEmotions folds a chronological series of emotions into one, weighting the
// most recent highest (each step back multiplies the weight by 0.8).
func BlendEmotions(emotions []Emotion) Emotion {
	if len(emotions) == 0 {
		return Neutral
	}
	n := len(emotions)
	var total, valence, arousal float64
	for i, e := range emotions {
		w := math.Pow(blendDecay, float64(n-i-1))
		total += w
		valence += e.Valence * w
		arousal += e.Arousal * w
	}
	return Emotion{Valence: valence / total, Arousal: arousal / total}
}
