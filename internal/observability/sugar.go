package observability

import "go.uber.org/zap"

// Sugar adapts a zap.Logger to the key/value Logger interfaces used by the
// playground, correlate and transport packages.
type Sugar struct {
	s *zap.SugaredLogger
}

// NewSugar wraps l. A nil l yields a no-op logger.
func NewSugar(l *zap.Logger) *Sugar {
	if l == nil {
		l = zap.NewNop()
	}
	return &Sugar{s: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// Named returns a child logger with name appended to the logger name.
func (l *Sugar) Named(name string) *Sugar {
	return &Sugar{s: l.s.Named(name)}
}

func (l *Sugar) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l *Sugar) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l *Sugar) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l *Sugar) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
