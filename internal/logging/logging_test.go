package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	res, err := New(Config{Level: "warn", Console: &buf})
	require.NoError(t, err)
	defer res.Close()

	res.Logger.Info().Msg("hidden")
	res.Logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.False(t, res.UsingFile)
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	res, err := New(Config{Level: "loud", Console: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, res.Logger.GetLevel())
}

func TestNew_FileGetsJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "transmit.log")
	res, err := New(Config{Level: "debug", File: p, Quiet: true})
	require.NoError(t, err)
	assert.True(t, res.UsingFile)

	Component(res.Logger, "tui").Debug().Str("tab", "draft").Msg("tab switched")
	require.NoError(t, res.Close())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(b), &line))
	assert.Equal(t, "tui", line["component"])
	assert.Equal(t, "draft", line["tab"])
	assert.Equal(t, "tab switched", line["message"])
}

func TestNew_QuietWithoutFileIsNop(t *testing.T) {
	res, err := New(Config{Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, zerolog.Disabled, res.Logger.GetLevel())
	assert.NoError(t, res.Close())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := l.WithContext(context.Background())
	FromContext(ctx).Info().Msg("via context")
	assert.Contains(t, buf.String(), "via context")

	assert.NotPanics(t, func() {
		FromContext(context.Background()).Info().Msg("dropped")
	})
}
