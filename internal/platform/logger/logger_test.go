package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warn, ParseLevel(" warning "))
	assert.Equal(t, Error, ParseLevel("error"))
	assert.Equal(t, Info, ParseLevel(""))
	assert.Equal(t, Info, ParseLevel("verbose"))
}

func TestJSONLogger_IncludesBaseAndCallFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Info, Format: FormatJSON, App: "hospital-queue", Output: &buf})

	log.With(map[string]any{"department": "OPD", "": "dropped"}).
		Info("patient checked in", map[string]any{"queue_number": 3})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "patient checked in", entry["message"])
	assert.Equal(t, "hospital-queue", entry["app"])
	assert.Equal(t, "OPD", entry["department"])
	assert.EqualValues(t, 3, entry["queue_number"])
	_, hasBlank := entry[""]
	assert.False(t, hasBlank)
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Warn, Format: FormatJSON, Output: &buf})

	log.Info("ignored", nil)
	log.Debug("ignored", nil)
	assert.Zero(t, buf.Len())

	log.Warn("kept", nil)
	assert.True(t, strings.Contains(buf.String(), "kept"))
}

func TestTextLogger_WritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Debug, Format: FormatText, Output: &buf})

	log.Debug("called", map[string]any{"visit_id": "v-1"})
	assert.Contains(t, buf.String(), "called")
	assert.Contains(t, buf.String(), "visit_id=v-1")
}

func TestNop_DoesNotPanic(t *testing.T) {
	log := Nop().With(map[string]any{"a": 1})
	log.Error("x", map[string]any{"b": 2})
}
