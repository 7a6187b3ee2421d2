package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgxLogger_LiftsSQLAndDropsArgsBelowTrace(t *testing.T) {
	var buf bytes.Buffer
	l := newPgxLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	l.Log(context.Background(), tracelog.LogLevelInfo, "Query", map[string]any{
		"sql":  "SELECT 1",
		"args": []any{"secret"},
		"time": 3 * time.Millisecond,
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "pgx", line["component"])
	assert.Equal(t, "SELECT 1", line["sql"])
	assert.Equal(t, "info", line["level"])
	assert.NotContains(t, line, "args")
	assert.NotContains(t, line, "time")
	assert.Contains(t, line, "took")
}

func TestPgxLogger_TraceKeepsArgs(t *testing.T) {
	var buf bytes.Buffer
	l := newPgxLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	l.Log(context.Background(), tracelog.LogLevelTrace, "Query", map[string]any{"args": []any{1}})
	assert.Contains(t, buf.String(), `"args":[1]`)
}

func TestPgxLogger_ShortensSnapshotArgs(t *testing.T) {
	var buf bytes.Buffer
	l := newPgxLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	events := []byte("[" + strings.Repeat(`{"stat":"goals"},`, 40) + "]")
	l.Log(context.Background(), tracelog.LogLevelTrace, "Query", map[string]any{
		"args": []any{"m-1", events, []byte("{}")},
	})

	var line struct {
		Args []any `json:"args"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Len(t, line.Args, 3)
	assert.Equal(t, "m-1", line.Args[0])
	assert.Equal(t, fmt.Sprintf("<%d bytes>", len(events)), line.Args[1])
	assert.Equal(t, "{}", line.Args[2])
}

func TestPgxLogger_NoneIsSilent(t *testing.T) {
	var buf bytes.Buffer
	newPgxLogger(zerolog.New(&buf)).Log(context.Background(), tracelog.LogLevelNone, "x", nil)
	assert.Empty(t, buf.String())
}

func TestTraceLevel(t *testing.T) {
	assert.Equal(t, tracelog.LogLevelTrace, traceLevel(zerolog.TraceLevel))
	assert.Equal(t, tracelog.LogLevelInfo, traceLevel(zerolog.InfoLevel))
	assert.Equal(t, tracelog.LogLevelError, traceLevel(zerolog.FatalLevel))
}
