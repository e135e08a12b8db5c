package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("WrapsWithContext", func(t *testing.T) {
		err := Wrap(ErrNotFound, "loading snapshot")
		assert.EqualError(t, err, "loading snapshot: not found")
		assert.True(t, Is(err, ErrNotFound))
	})

	t.Run("NilStaysNil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "anything"))
	})

	t.Run("PreservesChainThroughMultipleWraps", func(t *testing.T) {
		err := Wrap(Wrap(ErrUnavailable, "inner"), "outer")
		assert.True(t, Is(err, ErrUnavailable))
	})
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("handler: %w", ErrForbidden)
	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrUnauthorized))
}
