package planet

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var starTime = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

func TestStarPosition_Reproducible(t *testing.T) {
	a := StarPosition(2, 5, starTime)
	b := StarPosition(2, 5, starTime)
	assert.Equal(t, a, b)
}

func TestStarPosition_IgnoresSubSecond(t *testing.T) {
	assert.Equal(t, StarPosition(1, 3, starTime), StarPosition(1, 3, starTime.Add(750*time.Millisecond)))
}

// The seed is unix seconds + index, so shifting the timestamp by one second reuses the
// random draws of the next index. Radius and height come straight from those draws.
func TestStarPosition_SeedRule(t *testing.T) {
	shifted := StarPosition(2, 5, starTime.Add(time.Second))
	next := StarPosition(3, 5, starTime)
	assert.Equal(t, next.OrbitRadius, shifted.OrbitRadius)
	assert.Equal(t, next.Y, shifted.Y)

	same := StarPosition(2, 5, starTime)
	assert.NotEqual(t, same, shifted)
}

func TestStarPosition_Ranges(t *testing.T) {
	for i := 0; i < 200; i++ {
		ts := starTime.Add(time.Duration(i*37) * time.Minute)
		p := StarPosition(i%7, 7, ts)

		assert.GreaterOrEqual(t, p.OrbitRadius, 1.5)
		assert.LessOrEqual(t, p.OrbitRadius, 3.0)
		assert.GreaterOrEqual(t, p.OrbitAngle, 0.0)
		assert.LessOrEqual(t, p.OrbitAngle, 360.0)
		assert.GreaterOrEqual(t, p.Y, -0.25)
		assert.LessOrEqual(t, p.Y, 0.25)

		planar := math.Hypot(p.X, p.Z)
		assert.InDelta(t, p.OrbitRadius, planar, 0.02, "x/z should lie on the orbit")
	}
}

func TestStarPosition_AngleSpreadsByIndex(t *testing.T) {
	// base angle for index i of 4 is 90*i, jitter adds less than 30
	for i := 0; i < 4; i++ {
		p := StarPosition(i, 4, starTime)
		base := 90 * float64(i)
		assert.GreaterOrEqual(t, p.OrbitAngle, base)
		assert.LessOrEqual(t, p.OrbitAngle, base+30)
	}
}

func TestStarPosition_ZeroTotal(t *testing.T) {
	p := StarPosition(0, 0, starTime)
	assert.False(t, math.IsNaN(p.OrbitAngle))
	assert.False(t, math.IsInf(p.OrbitAngle, 0))
	assert.Equal(t, StarPosition(0, 1, starTime), p)
}

func TestTreePosition_Stable(t *testing.T) {
	first := TreePosition("工作", 0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TreePosition("工作", 0))
	}
	assert.NotEqual(t, first, TreePosition("工作", 1))
	assert.NotEqual(t, first, TreePosition("生活", 0))
}

func TestTreePosition_OnUnitSphere(t *testing.T) {
	themes := []string{"工作", "日常思考", "未分类", "reading", ""}
	for _, theme := range themes {
		for i := 0; i < 50; i++ {
			c := TreePosition(theme, i)
			r2 := c.X*c.X + c.Y*c.Y + c.Z*c.Z
			assert.InDelta(t, 1.0, r2, 0.03, "theme %q index %d -> %+v", theme, i, c)
		}
	}
}

func TestThemeHash_Fixed(t *testing.T) {
	// FNV-1a 64 offset basis; guards against swapping in a seeded or randomized hash.
	assert.Equal(t, uint64(14695981039346656037), themeHash(""))
}

func TestPositions_ConcurrentCallsAgree(t *testing.T) {
	want := make([]OrbitPosition, 20)
	for i := range want {
		want[i] = StarPosition(i, 20, starTime)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20*8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range want {
				if got := StarPosition(i, 20, starTime); got != want[i] {
					errs <- fmt.Errorf("index %d: got %+v want %+v", i, got, want[i])
				}
				_ = TreePosition("工作", i)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
