package logging

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugf_SuppressedByDefault(t *testing.T) {
	logger, err := NewLogger("quiet")
	require.NoError(t, err)
	defer logger.Close()

	SetDebug(false)
	logger.Debugf("should not appear: %s", "suppressed-marker")

	data, err := os.ReadFile(logger.LogPath())
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "suppressed-marker"))
}

func TestDebugf_EnabledBySetDebug(t *testing.T) {
	logger, err := NewLogger("verbose")
	require.NoError(t, err)
	defer logger.Close()

	SetDebug(true)
	defer SetDebug(false)
	logger.Debugf("now visible: %s", "visible-marker")

	data, err := os.ReadFile(logger.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible-marker")
}
