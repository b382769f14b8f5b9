package logger

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Service string
	Level   string
	// Format is "json" or "console".
	Format string
	// OutputPaths defaults to stderr so command output on stdout stays clean.
	OutputPaths []string
	// Writer, when set, takes precedence over OutputPaths.
	Writer io.Writer
}

func New(opts Options) (*zap.Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		cfg = zap.NewProductionConfig()
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("log format[%s] is not supported", opts.Format)
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	var log *zap.Logger
	if opts.Writer != nil {
		log = zap.New(zapcore.NewCore(encoder(cfg), zapcore.AddSync(opts.Writer), cfg.Level))
	} else {
		log, err = cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("cfg.Build: %w", err)
		}
	}

	if opts.Service != "" {
		log = log.With(zap.String("service", opts.Service))
	}

	return log, nil
}

func parseLevel(lvl string) (zapcore.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(lvl))
	switch normalized {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}

	level, err := zapcore.ParseLevel(normalized)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("zapcore.ParseLevel: %w", err)
	}
	return level, nil
}

func encoder(cfg zap.Config) zapcore.Encoder {
	if cfg.Encoding == "json" {
		return zapcore.NewJSONEncoder(cfg.EncoderConfig)
	}
	return zapcore.NewConsoleEncoder(cfg.EncoderConfig)
}
