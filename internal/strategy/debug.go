package strategy

import (
	"go.uber.org/zap"

	"lpcfmt/internal/format"
)

// Debug spreads code out and marks unparsed regions. Every error collected
// during the walk is also logged.
type Debug struct {
	Log *zap.SugaredLogger
}

func (Debug) Name() string        { return "Debug" }
func (Debug) Type() Type          { return TypeDebug }
func (Debug) Priority() float64   { return 30 }
func (Debug) Description() string { return "Verbose formatting with expanded layout and logged formatter errors" }

func (Debug) IsApplicable(*format.Request) bool { return true }

func (d Debug) Apply(fctx *format.Context, req *format.Request) error {
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	l := &fctx.Layout
	l.IndentSize = max(orDefault(fctx.Options.IndentSize, 4), 4)
	l.BracesOnNewLine = true
	l.SpaceAroundOperators = true
	l.SpaceAroundAssignment = true
	l.DebugComments = true
	fctx.SyncLayout()

	if _, wrapped := fctx.Errors.(*LoggingCollector); !wrapped {
		fctx.Errors = &LoggingCollector{ErrorCollector: fctx.Errors, Log: log}
	}
	log.Debugw("debug strategy applied", "textLength", len(req.Text), "mode", req.Mode)
	return nil
}

// LoggingCollector decorates an ErrorCollector so every error is logged as
// it is recorded.
type LoggingCollector struct {
	format.ErrorCollector
	Log *zap.SugaredLogger
}

func (c *LoggingCollector) AddError(msg, context string) {
	c.Log.Warnw("formatting error", "message", msg, "context", context)
	c.ErrorCollector.AddError(msg, context)
}
