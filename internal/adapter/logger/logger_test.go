package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter("api", &buf, LevelDebug)

	lgr.Error("db_error", "Failed to update order", "req-1", map[string]interface{}{"order_id": "o-1"}, errors.New("boom"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "api", entry["service"])
	assert.Equal(t, "db_error", entry["action"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "Failed to update order", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, map[string]interface{}{"order_id": "o-1"}, entry["details"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter("api", &buf, LevelInfo)

	lgr.Debug("noise", "should be dropped", "", nil)
	assert.Zero(t, buf.Len())

	lgr.Info("startup", "kept", "", nil)
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
