package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tests mutate the package-level loggers, so they run sequentially

func TestSetOutputRedirectsBothLoggers(t *testing.T) {
	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	Structured().Info("structured message", "trees", 3)
	HumanReadable().Info("human message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &entry))
	assert.Equal(t, "structured message", entry["msg"])
	assert.Equal(t, float64(3), entry["trees"])

	assert.Contains(t, human.String(), "human message")
}

func TestForServiceAddsAttribute(t *testing.T) {
	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	ForService("estimate").Info("batch complete")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &entry))
	assert.Equal(t, "estimate", entry["service"])
}

func TestCustomLevelNames(t *testing.T) {
	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	Structured().Log(context.Background(), LevelFatal, "fatal message")
	assert.Contains(t, structured.String(), `"FATAL"`)

	structured.Reset()
	// trace is below the configured debug level and must be suppressed
	Structured().Log(context.Background(), LevelTrace, "trace message")
	assert.Empty(t, structured.String())
}
