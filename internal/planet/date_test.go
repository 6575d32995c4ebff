package planet

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.December, Day: 31}, d)
	assert.Equal(t, "2025-01-01", d.AddDays(1).String())

	_, err = ParseDate("2024/12/31")
	assert.Error(t, err)
	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestDate_AddDaysAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2024-03-10 is 23 hours long in New York.
	d := Date{Year: 2024, Month: time.March, Day: 9}
	for i := 0; i < 3; i++ {
		start, end := d.Bounds(ny)
		assert.Equal(t, d, DateOf(start))
		assert.Equal(t, d.AddDays(1), DateOf(end))
		d = d.AddDays(1)
	}
	start, end := Date{Year: 2024, Month: time.March, Day: 10}.Bounds(ny)
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}

func TestDate_Compare(t *testing.T) {
	a := Date{Year: 2024, Month: time.January, Day: 31}
	b := a.AddDays(1)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.Equal(t, 1, a.DaysUntil(b))
	assert.Equal(t, -366, b.DaysUntil(b.AddDays(-366)))
}

func TestDate_JSON(t *testing.T) {
	raw, err := json.Marshal(Date{Year: 2024, Month: time.May, Day: 5})
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-05"`, string(raw))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2023-11-09"`), &d))
	assert.Equal(t, Date{Year: 2023, Month: time.November, Day: 9}, d)
}
