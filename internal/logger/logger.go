// Package logger builds the process wide zap logger.
package logger

import (
	"github.com/code19m/errx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level and encoding.
type Config struct {
	Level    string `default:"info" validate:"oneof=debug info warn error"`
	Encoding string `default:"json" validate:"oneof=json console"`
	Disable  bool
}

// New builds a sugared logger writing to stdout.
func New(cfg Config) (*zap.SugaredLogger, error) {
	if cfg.Disable {
		return zap.NewNop().Sugar(), nil
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, errx.Wrap(err, errx.WithType(errx.T_Validation))
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		TimeKey:        "time",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	zapConfig := zap.Config{
		Level:            level,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		Encoding:         cfg.Encoding,
		EncoderConfig:    encoderConfig,
	}
	l, err := zapConfig.Build()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return l.Named("store-finder").Sugar(), nil
}

// ErrorKeyvals expands an errx error into key/value pairs for the *w methods.
func ErrorKeyvals(err error) []any {
	if err == nil {
		return nil
	}
	e := errx.AsErrorX(err)
	return []any{
		"error", err.Error(),
		"error_code", e.Code(),
		"error_type", e.Type().String(),
		"error_fields", e.Fields(),
		"error_details", e.Details(),
	}
}
