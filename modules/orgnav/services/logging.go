package services

import (
	"context"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// WithLogger attaches a request-scoped logger; services prefer it over their own.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func loggerFromContext(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return nil
	}
	switch typed := ctx.Value(loggerKey{}).(type) {
	case *logrus.Entry:
		return typed
	case *logrus.Logger:
		return logrus.NewEntry(typed)
	default:
		return nil
	}
}

func entryFor(ctx context.Context, fallback *logrus.Logger) *logrus.Entry {
	if e := loggerFromContext(ctx); e != nil {
		return e
	}
	if fallback == nil {
		fallback = logrus.StandardLogger()
	}
	return logrus.NewEntry(fallback)
}

func logWithFields(ctx context.Context, fallback *logrus.Logger, level logrus.Level, msg string, fields logrus.Fields) {
	entryFor(ctx, fallback).WithFields(fields).Log(level, msg)
}
