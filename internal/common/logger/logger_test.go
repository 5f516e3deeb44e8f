package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestLogKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.Info("Dataset updated", "dataset_id", "abc", "fields", 2)

	line := decodeLine(t, &buf)
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "Dataset updated", line["message"])
	assert.Equal(t, "abc", line["dataset_id"])
	assert.EqualValues(t, 2, line["fields"])
}

func TestLogErrorKeyUsesErrField(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.Error("Request failed", "error", errors.New("connection refused"))

	line := decodeLine(t, &buf)
	assert.Equal(t, "connection refused", line[zerolog.ErrorFieldName])
}

func TestLogFieldMap(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.Warn("Map fields", map[string]interface{}{"operation": "resource_show"})

	line := decodeLine(t, &buf)
	assert.Equal(t, "resource_show", line["operation"])
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf).With("component", "ckan")

	log.Debug("hello")

	line := decodeLine(t, &buf)
	assert.Equal(t, "ckan", line["component"])
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		" info ":  zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
		"off":     zerolog.Disabled,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), "level %q", in)
	}
}

func TestNewFromConfigWithoutWritersIsNop(t *testing.T) {
	log := NewFromConfig(LoggerConfig{})
	require.NotNil(t, log)
	log.Info("discarded")
}
