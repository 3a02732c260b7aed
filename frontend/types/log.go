package types

import "log/slog"

// LogValue wraps t so it is only rendered when a record is actually emitted
func LogValue(t Type) slog.LogValuer { return typeLogValuer{t} }

type typeLogValuer struct{ Type }

func (l typeLogValuer) LogValue() slog.Value {
	if l.Type == nil {
		return slog.StringValue("<nil>")
	}
	return slog.StringValue(l.Type.String())
}
