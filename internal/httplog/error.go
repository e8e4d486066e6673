package httplog

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID attaches the exchange's correlation id to a context so
// ReportError can recover it outside the normal pipeline.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the correlation id attached by WithRequestID.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// CallStack captures the caller's stack for ReportError. skip counts
// frames above the caller to drop.
func CallStack(skip int) []uintptr {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	return pcs[:n]
}

// ReportError emits exactly one structured error record at error severity,
// ignoring the phase gates. It exists so a global exception handler, which
// cannot rely on the response-ready hook having run, still produces one
// log entry per failure. The correlation id is read from ctx when present.
func (i *Interceptor) ReportError(ctx context.Context, kind string, reason any, stack []uintptr) error {
	var requestID any
	if ctx != nil {
		if id, ok := RequestIDFrom(ctx); ok && id != "" {
			requestID = id
		}
	}
	rec := map[string]any{
		"log_type":   "error",
		"error_type": errorType(kind, reason),
		"message":    errorMessage(kind, reason, stack),
		"request_id": requestID,
	}
	emitStart := i.now()
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := i.sink.Write(LevelError, line); err != nil {
		return err
	}
	i.observeEmitted("error", "", emitStart)
	return nil
}

// errorType is the reason's structural type name when it is an error
// value, otherwise the supplied kind.
func errorType(kind string, reason any) string {
	err, ok := reason.(error)
	if !ok || err == nil {
		return kind
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

// errorMessage renders a one-line summary followed by one line per stack
// frame, "<file>:<line>: <pkg>.<func>".
func errorMessage(kind string, reason any, stack []uintptr) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** (%s) %s", errorType(kind, reason), describeReason(reason))
	if len(stack) > 0 {
		frames := runtime.CallersFrames(stack)
		for {
			frame, more := frames.Next()
			if frame.PC != 0 {
				fmt.Fprintf(&b, "\n%s:%d: %s", frame.File, frame.Line, frame.Function)
			}
			if !more {
				break
			}
		}
	}
	return b.String()
}

func describeReason(reason any) string {
	if err, ok := reason.(error); ok && err != nil {
		return err.Error()
	}
	return fmt.Sprint(reason)
}
