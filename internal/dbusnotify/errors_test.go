package dbusnotify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartupError_WrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("bus unreachable")
	err := newStartupError(underlying)

	assert.Equal(t, StartupErrorBus, err.Kind)
	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "bus unreachable")
}
