package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	errBoom     = errors.New("boom")
	errRejected = errors.New("rejected")
)

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New[int]("test", time.Minute, zap.NewNop(), nil)

	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (int, error) { return 0, errBoom })
		require.ErrorIs(t, err, errBoom)
	}

	calls := 0
	_, err := b.Execute(func() (int, error) { calls++; return 1, nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.Zero(t, calls)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	b := New[int]("test", time.Minute, zap.NewNop(), func(err error) bool {
		return errors.Is(err, errRejected)
	})

	for i := 0; i < 10; i++ {
		_, err := b.Execute(func() (int, error) { return 0, errRejected })
		require.ErrorIs(t, err, errRejected)
	}

	v, err := b.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "closed", b.State())
}
