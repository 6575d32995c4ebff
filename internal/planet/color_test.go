package planet

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestColor_KnownValues(t *testing.T) {
	cases := []struct {
		valence, arousal float64
		want             string
	}{
		{0.5, 0.5, "#d6d65b"},
		{0, 0, "#474784"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Color(c.valence, c.arousal), "Color(%v, %v)", c.valence, c.arousal)
	}
}

func TestColor_Deterministic(t *testing.T) {
	for v := 0.0; v <= 1.0; v += 0.05 {
		for a := 0.0; a <= 1.0; a += 0.1 {
			assert.Equal(t, Color(v, a), Color(v, a))
		}
	}
}

func TestColor_ClampsInputs(t *testing.T) {
	assert.Equal(t, Color(0, 1), Color(-1, 2))
	assert.Equal(t, Color(1, 0), Color(3, -0.5))
}

func TestColor_Format(t *testing.T) {
	for v := -0.5; v <= 1.5; v += 0.1 {
		c := Color(v, 1-v)
		assert.Len(t, c, 7)
		assert.Regexp(t, hexColor, c)
	}
}

// Recover HSL lightness and saturation from the output and check they stay within
// 0.4..0.8 and 0.3..0.9 (allowing for byte truncation).
func TestColor_HSLRanges(t *testing.T) {
	const tol = 0.03
	for v := 0.0; v <= 1.0; v += 0.05 {
		for a := 0.0; a <= 1.0; a += 0.05 {
			c := Color(v, a)
			r, g, b := parseHex(t, c)
			hi := max(r, g, b)
			lo := min(r, g, b)
			l := (hi + lo) / 2
			s := 0.0
			if hi != lo {
				s = (hi - lo) / (1 - abs(2*l-1))
			}
			assert.GreaterOrEqual(t, l, 0.4-tol, "lightness of %s (v=%.2f a=%.2f)", c, v, a)
			assert.LessOrEqual(t, l, 0.8+tol, "lightness of %s (v=%.2f a=%.2f)", c, v, a)
			assert.GreaterOrEqual(t, s, 0.3-tol, "saturation of %s (v=%.2f a=%.2f)", c, v, a)
			assert.LessOrEqual(t, s, 0.9+tol, "saturation of %s (v=%.2f a=%.2f)", c, v, a)
		}
	}
}

// The two hue branches meet discontinuously at valence 0.5; just below it the color is
// purple-blue, at 0.5 it is yellow.
func TestColor_HueBranchesAtHalfValence(t *testing.T) {
	r, g, b := parseHex(t, Color(0.49, 0.5))
	assert.Greater(t, b, g, "below 0.5 blue should dominate green")
	assert.Greater(t, r, g, "hue near 300 carries red")

	r, g, b = parseHex(t, Color(0.5, 0.5))
	assert.InDelta(t, r, g, 0.01, "hue 60 has equal red and green")
	assert.Less(t, b, g)
}

func parseHex(t *testing.T, c string) (float64, float64, float64) {
	t.Helper()
	require.Regexp(t, hexColor, c)
	ch := func(s string) float64 {
		v, err := strconv.ParseUint(s, 16, 8)
		require.NoError(t, err)
		return float64(v) / 255
	}
	return ch(c[1:3]), ch(c[3:5]), ch(c[5:7])
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
