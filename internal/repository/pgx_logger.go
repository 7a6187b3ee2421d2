package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// snapshotArgLimit is the size above which a query argument (in practice a
// match stats or events JSONB document) is logged as its length only.
const snapshotArgLimit = 256

type pgxLogger struct {
	logger zerolog.Logger
}

func newPgxLogger(logger zerolog.Logger) *pgxLogger {
	return &pgxLogger{logger: logger.With().Str("component", "pgx").Logger()}
}

// Log maps pgx levels onto zerolog. The statement goes to "sql", its duration
// to "took". Arguments are only written at trace level, with match snapshots
// shortened to their byte size.
func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var event *zerolog.Event
	switch level {
	case tracelog.LogLevelNone:
		return
	case tracelog.LogLevelTrace:
		event = l.logger.Trace()
		if args, ok := data["args"].([]any); ok {
			event = event.Interface("args", shortenArgs(args))
		}
	case tracelog.LogLevelDebug:
		event = l.logger.Debug()
	case tracelog.LogLevelInfo:
		event = l.logger.Info()
	case tracelog.LogLevelWarn:
		event = l.logger.Warn()
	case tracelog.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info().Str("pgx_log_level", level.String())
	}
	delete(data, "args")

	if sql, ok := data["sql"].(string); ok {
		event = event.Str("sql", sql)
		delete(data, "sql")
	}
	if took, ok := data["time"].(time.Duration); ok {
		event = event.Dur("took", took)
		delete(data, "time")
	}
	if len(data) > 0 {
		event = event.Fields(data)
	}
	event.Msg(msg)
}

func shortenArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case []byte:
			if len(v) > snapshotArgLimit {
				out[i] = fmt.Sprintf("<%d bytes>", len(v))
				continue
			}
			out[i] = string(v)
		case string:
			if len(v) > snapshotArgLimit {
				out[i] = fmt.Sprintf("<%d chars>", len(v))
				continue
			}
			out[i] = v
		default:
			out[i] = a
		}
	}
	return out
}
