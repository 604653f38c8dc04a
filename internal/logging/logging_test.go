package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, "debug", "prod")

	logger.Info().Str("user_id", "42").Msg("login")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "login", line["message"])
	assert.Equal(t, "42", line["user_id"])
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetup_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, "chatty", "prod")

	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetup_ConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, "info", "dev")

	logger.Info().Msg("listening")
	assert.Contains(t, buf.String(), "listening")
	assert.False(t, json.Valid(buf.Bytes()))
}
