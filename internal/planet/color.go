package planet

import (
	"fmt"
	"math"
)

// Color maps a valence/arousal pair to a #rrggbb color.
//
// Hue follows valence: 60°..120° for valence in [0.5, 1], and 240 + valence*120 below 0.5.
// The two branches do not meet at 0.5 (60° vs 300°); existing records were colored with
// this formula, so it must not be smoothed. Saturation follows arousal (0.3..0.9) and
// lightness follows valence (0.4..0.8). Out-of-range inputs are clamped.
func Color(valence, arousal float64) string {
	valence = clamp01(valence)
	arousal = clamp01(arousal)

	var hue float64
	if valence >= 0.5 {
		hue = 60 + (valence-0.5)*2*60
	} else {
		hue = 240 + valence*2*60
	}
	saturation := 0.3 + arousal*0.6
	lightness := 0.4 + valence*0.4

	r, g, b := hlsToRGB(hue/360, lightness, saturation)
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

// channel truncates a [0,1] component to a byte.
func channel(c float64) int {
	v := int(c * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func hlsToRGB(h, l, s float64) (float64, float64, float64) {
	if s == 0 {
		return l, l, l
	}
	var m2 float64
	if l <= 0.5 {
		m2 = l * (1 + s)
	} else {
		m2 = l + s - l*s
	}
	m1 := 2*l - m2
	return hueComponent(m1, m2, h+1.0/3), hueComponent(m1, m2, h), hueComponent(m1, m2, h-1.0/3)
}

func hueComponent(m1, m2, h float64) float64 {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	switch {
	case h < 1.0/6:
		return m1 + (m2-m1)*h*6
	case h < 0.5:
		return m2
	case h < 2.0/3:
		return m1 + (m2-m1)*(2.0/3-h)*6
	default:
		return m1
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
