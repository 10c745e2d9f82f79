package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFacingMessagesGoToStdout(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	log := NewWithOutput(false, "", false, &stdout, &stderr)

	log.InfoToUser("pulled %d commits", 3)
	log.Success("snapshot created")
	log.StatusMessage("plain status")

	out := stdout.String()
	assert.Contains(t, out, "ℹ️  pulled 3 commits")
	assert.Contains(t, out, "✅ snapshot created")
	assert.Contains(t, out, "plain status")
	assert.Empty(t, stderr.String())
}

func TestErrorsGoToStderr(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	log := NewWithOutput(false, "", false, &stdout, &stderr)

	log.Error("push failed: %v", "remote hung up")

	assert.Contains(t, stderr.String(), "❌ push failed: remote hung up")
	assert.NotContains(t, stdout.String(), "push failed")
}

func TestWarningHiddenUnlessVerbose(t *testing.T) {
	t.Parallel()
	var quietOut bytes.Buffer
	quiet := NewWithOutput(false, "", false, &quietOut, &bytes.Buffer{})
	quiet.Warning("could not delete %s", "proj_1.zip")
	assert.Empty(t, quietOut.String())

	var verboseOut bytes.Buffer
	verbose := NewWithOutput(false, "", true, &verboseOut, &bytes.Buffer{})
	verbose.Warning("could not delete %s", "proj_1.zip")
	assert.Contains(t, verboseOut.String(), "⚠️  could not delete proj_1.zip")
}

func TestWarningToUserAlwaysShown(t *testing.T) {
	t.Parallel()
	var stdout bytes.Buffer
	log := NewWithOutput(false, "", false, &stdout, &bytes.Buffer{})

	log.WarningToUser("replace the placeholder icons")
	assert.Contains(t, stdout.String(), "⚠️  replace the placeholder icons")
}

func TestDebugLoggingWritesFile(t *testing.T) {
	t.Parallel()
	logFile := filepath.Join(t.TempDir(), "logs", "snapkit.log")

	var stdout, stderr bytes.Buffer
	log := NewWithOutput(true, logFile, false, &stdout, &stderr)

	log.Info("counter advanced to %d", 6)
	require.NoError(t, log.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "snapkit debug logging started")
	assert.Contains(t, content, "counter advanced to 6")

	// Info stays out of the user's face.
	assert.NotContains(t, stdout.String(), "counter advanced")
}

func TestInfoSuppressedWhenDisabled(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	log := NewWithOutput(false, "", true, &stdout, &stderr)

	log.Info("internal detail")

	assert.Empty(t, stdout.String())
	assert.False(t, strings.Contains(stderr.String(), "internal detail"))
}

func TestCloseWithoutFileIsNil(t *testing.T) {
	t.Parallel()
	log := NewWithOutput(false, "", false, &bytes.Buffer{}, &bytes.Buffer{})
	assert.NoError(t, log.Close())
}
