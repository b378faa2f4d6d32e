package cancel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetCancelledIsCancelled(t *testing.T) {
	reset()
	defer reset()

	assert.False(t, IsCancelled())
	SetCancelled()
	assert.True(t, IsCancelled())
	// Idempotent.
	SetCancelled()
	assert.True(t, IsCancelled())
}

func TestGuardSkipsWhenCancelled(t *testing.T) {
	reset()
	defer reset()

	SetCancelled()
	ran := false
	_, cancelled, err := Guard(func() (int, error) {
		ran = true
		return 1, nil
	})
	assert.True(t, cancelled)
	assert.NoError(t, err)
	assert.False(t, ran)
}

func TestGuardRunsWhenNotCancelled(t *testing.T) {
	reset()
	defer reset()

	result, cancelled, err := Guard(func() (int, error) {
		return 42, nil
	})
	assert.False(t, cancelled)
	assert.NoError(t, err)
	assert.Equal(t, 42, result)
}
