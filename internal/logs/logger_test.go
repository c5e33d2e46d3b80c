package logs

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	LogJSON("WARN", "Post not found", map[string]interface{}{
		"route":  "/api/posts/:id",
		"userID": "user-1",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "WARN", entry["severity"])
	assert.Equal(t, "Post not found", entry["message"])
	assert.Equal(t, "/api/posts/:id", entry["route"])
	assert.Equal(t, "user-1", entry["userID"])
	assert.NotEmpty(t, entry["time"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"DEBUG": "DEBUG",
		"info":  "INFO",
		"FATAL": "ERROR",
		"":      "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in).String(), in)
	}
}
