package logger

import (
	"go.uber.org/zap"
)

// New builds a production logger, or a development one outside production.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Must is New that falls back to a no-op logger instead of failing.
func Must(env string) *zap.Logger {
	l, err := New(env)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
