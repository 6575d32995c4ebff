package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar/internal/planet"
)

func TestJSON_ScanAndValue(t *testing.T) {
	var kw JSON[[]string]
	require.NoError(t, kw.Scan([]byte(`["a","b"]`)))
	assert.True(t, kw.Valid)
	assert.Equal(t, []string{"a", "b"}, kw.V)

	v, err := kw.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	require.NoError(t, kw.Scan(nil))
	assert.False(t, kw.Valid)
	v, err = kw.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, kw.Scan(42))
	assert.Error(t, kw.Scan("{not json"))
}

func TestParseRecordType(t *testing.T) {
	rt, ok := ParseRecordType("MOOD")
	assert.True(t, ok)
	assert.Equal(t, RecordMood, rt)

	_, ok = ParseRecordType("dream")
	assert.False(t, ok)
}

func TestRecord_Entry(t *testing.T) {
	ts := time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)
	color := "#abcdef"
	mood := Record{
		ID: "m", Type: RecordMood, CreatedAt: ts, ColorHex: &color,
		EmotionAnalysis: NewJSON(EmotionAnalysis{Valence: 0.8, Arousal: 0.2}),
	}
	m, ok := mood.Entry().(planet.Mood)
	require.True(t, ok)
	assert.Equal(t, "#abcdef", m.Color)
	assert.Equal(t, 0.8, m.Emotion.Valence)
	assert.Equal(t, ts, m.CreatedAt)

	orbit := planet.StarPosition(0, 1, ts)
	spark := Record{
		ID: "s", Type: RecordSpark, CreatedAt: ts,
		Keywords:     NewJSON([]string{"idea"}),
		PositionData: NewJSON(OrbitPositionData(orbit)),
	}
	s, ok := spark.Entry().(planet.Spark)
	require.True(t, ok)
	require.NotNil(t, s.Position)
	assert.Equal(t, orbit, *s.Position)
	assert.Equal(t, []string{"idea"}, s.Keywords)

	theme := "工作"
	surface := planet.TreePosition(theme, 0)
	th := Record{
		ID: "t", Type: RecordThought, CreatedAt: ts, ThemeCluster: &theme,
		PositionData: NewJSON(SurfacePositionData(surface)),
	}
	tt, ok := th.Entry().(planet.Thought)
	require.True(t, ok)
	assert.Equal(t, theme, tt.Cluster)
	assert.Equal(t, surface, *tt.Position)

	bare, ok := Record{ID: "t2", Type: RecordThought}.Entry().(planet.Thought)
	require.True(t, ok)
	assert.Nil(t, bare.Position)
}
