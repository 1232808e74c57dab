package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/venta-admin/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, logging.ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, logging.ParseLevel(" warning "))
	require.Equal(t, zerolog.ErrorLevel, logging.ParseLevel("error"))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel("verbose"))
}

func TestNewWithWriter_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "info", "PROD")

	log.Debug().Msg("dropped")
	log.Info().Str("request_id", "abc").Msg("sent")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "sent", line["message"])
	require.Equal(t, "abc", line["request_id"])
	require.Equal(t, "info", line["level"])
}

func TestNewWithWriter_ConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "debug", "dev")

	log.Debug().Msg("hello")
	require.Contains(t, buf.String(), "hello")
	require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
