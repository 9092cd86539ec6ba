package gosqs

import (
	"log/slog"
	"os"
)

// Logger provides a simple interface to implement your own logging platform or use the default
type Logger interface {
	Println(v ...interface{})
}

// defaultLogger forwards to a structured slog.Logger so that messages emitted by the engine carry
// the same key/value fields as the rest of a slog-based service, rather than a flat log.Println line.
type defaultLogger struct {
	l *slog.Logger
}

func newDefaultLogger() *defaultLogger {
	return &defaultLogger{l: slog.New(slog.NewJSONHandler(os.Stderr, nil))}
}

func (dl *defaultLogger) Println(v ...interface{}) {
	dl.l.Info("gosqs", "msg", fmtArgs(v))
}

func fmtArgs(v []interface{}) string {
	if len(v) == 1 {
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	s := ""
	for i, a := range v {
		if i > 0 {
			s += " "
		}
		if e, ok := a.(error); ok {
			s += e.Error()
			continue
		}
		if str, ok := a.(string); ok {
			s += str
			continue
		}
		s += toString(a)
	}
	return s
}

func toString(v interface{}) string {
	return slog.AnyValue(v).String()
}
