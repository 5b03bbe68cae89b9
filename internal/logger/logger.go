package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger settings. Development is derived from APP_ENV by the
// config package rather than read on its own.
type Config struct {
	Level      string `env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `env:"LOG_ENCODING"`
	OutputPath string `env:"LOG_OUTPUT_PATH"`
	Service    string `env:"LOG_SERVICE_NAME" env-default:"scenario-admin"`

	Development bool
}

// New builds the service logger. Every entry carries the service name.
// Development mode defaults to console output with callers and error stack
// traces; production defaults to bare json. OutputPath may list several sinks
// separated by commas.
func New(cfg Config) (*zap.Logger, error) {
	level, levelErr := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		DisableCaller:     !cfg.Development,
		DisableStacktrace: !cfg.Development,
		Encoding:          encoding(cfg),
		EncoderConfig:     encoderCfg,
		OutputPaths:       outputPaths(cfg.OutputPath),
		ErrorOutputPaths:  []string{"stderr"},
	}

	var opts []zap.Option
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	logger, err := zapConfig.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if levelErr != nil {
		logger.Warn("Invalid log level, using info", zap.String("configuredLevel", cfg.Level), zap.Error(levelErr))
	}
	return logger, nil
}

func parseLevel(raw string) (zapcore.Level, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel, err
	}
	return lvl, nil
}

func encoding(cfg Config) string {
	switch e := strings.ToLower(cfg.Encoding); e {
	case "console", "json":
		return e
	}
	if cfg.Development {
		return "console"
	}
	return "json"
}

func outputPaths(raw string) []string {
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return []string{"stdout"}
	}
	return paths
}
