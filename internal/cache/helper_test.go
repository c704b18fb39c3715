package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsideWithoutRedisCallsFill(t *testing.T) {
	prev := client
	client = nil
	t.Cleanup(func() { client = prev })

	var dest string
	calls := 0
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		calls++
		dest = "from source"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from source", dest)
	assert.Equal(t, 1, calls)

	// Without a cache every read hits the source.
	err = Aside(context.Background(), "k", &dest, time.Minute, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAsidePropagatesFillError(t *testing.T) {
	prev := client
	client = nil
	t.Cleanup(func() { client = prev })

	wantErr := errors.New("source down")
	var dest string
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "user:abc-123", UserKey("abc-123"))
}
