package error

import (
	"os"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureExit(t *testing.T) *int {
	code := -1
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = os.Exit })
	return &code
}

func TestExternal(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	code := captureExit(t)

	External("Config file '%s' not found.", "run.ini")

	assert.Equal(t, ExitCode, *code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
	assert.True(t, strings.HasSuffix(hook.LastEntry().Message,
		"Config file 'run.ini' not found."))
}

func TestInternal(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	code := captureExit(t)

	Internal("Impossible node %d.", 7)

	assert.Equal(t, ExitCode, *code)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "Impossible node 7.")
	assert.Contains(t, hook.LastEntry().Data, "stack")
}
