package log

import (
	"context"
	"log/slog"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// ErrFmtHandler adds the stack of an error passed with ErrAttr to the record
// under StacktraceAttrKey. Everything else is delegated to the wrapped handler.
type ErrFmtHandler struct {
	slog.Handler
}

// WrapByErrFmtHandler wraps h in an ErrFmtHandler.
func WrapByErrFmtHandler(h slog.Handler) slog.Handler {
	return ErrFmtHandler{Handler: h}
}

func (h ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	if st := recordStack(r); st != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, st))
	}
	return h.Handler.Handle(ctx, r)
}

func (h ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ErrFmtHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h ErrFmtHandler) WithGroup(name string) slog.Handler {
	return ErrFmtHandler{Handler: h.Handler.WithGroup(name)}
}

// recordStack looks at the first ErrAttrKey attribute only.
func recordStack(r slog.Record) (st string) {
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != ErrAttrKey {
			return true
		}
		if err, ok := a.Value.Any().(error); ok {
			st = errors.StackTrace(err)
		}
		return false
	})
	return st
}
