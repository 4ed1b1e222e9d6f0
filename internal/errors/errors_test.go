package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	base := New("fcm unavailable")

	err := Retryable(base)
	assert.True(t, IsRetryable(err))
	assert.True(t, Is(err, base))
	assert.Contains(t, err.Error(), "fcm unavailable")

	wrapped := fmt.Errorf("notify author: %w", err)
	assert.True(t, IsRetryable(wrapped))

	assert.False(t, IsRetryable(Wrap(base, "topic rejected")))
	assert.NoError(t, Retryable(nil))
}
