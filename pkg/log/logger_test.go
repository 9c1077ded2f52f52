package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextWithLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	ctx, flush := NewContextWithLogger(context.Background(), Options{JSON: true, Out: &buf})

	ctx = WithFields(ctx, "turn_id", "t-1", "user_id", "u-1")
	FromCtx(ctx).Info().Msg("turn finished")
	flush()

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "turn finished", entry["message"])
	assert.Equal(t, "t-1", entry["turn_id"])
	assert.Equal(t, "u-1", entry["user_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewContextWithLogger_DebugFiltered(t *testing.T) {
	var buf bytes.Buffer
	ctx, flush := NewContextWithLogger(context.Background(), Options{JSON: true, Out: &buf})

	FromCtx(ctx).Debug().Msg("hidden")
	flush()

	assert.Empty(t, strings.TrimSpace(buf.String()))
}
