package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar/internal/planet"
)

func TestKey(t *testing.T) {
	day := planet.Date{Year: 2024, Month: time.March, Day: 7}
	assert.Equal(t, "stellar:planet:u1:2024-03-07", key("u1", day))
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	day := planet.Date{Year: 2024, Month: time.March, Day: 7}
	var c PlanetCache = Nop{}
	require.NoError(t, c.Set(ctx, "u1", planet.State{Date: day}))
	_, ok, err := c.Get(ctx, "u1", day)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, "u1", day))
}

func TestNewRedis_Errors(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-url", time.Minute)
	assert.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = NewRedis(ctx, "redis://127.0.0.1:1/0", time.Minute)
	assert.Error(t, err)
}
