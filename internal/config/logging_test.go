package config

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LogConfig{Level: "info", Format: LogFormatJSON}, &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("mint", "abc").Msg("issued")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "issued", line["message"])
	assert.Equal(t, "abc", line["mint"])
}

func TestNewLogger_Errors(t *testing.T) {
	_, err := NewLogger(LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
