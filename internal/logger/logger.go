package logger

import (
	"os"
	"showdown-vote/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := SetLevel(level)

	if cfg.EnvFileMissing {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	logger.Info().
		Str("db_driver", cfg.DBDriver).
		Str("server_port", cfg.ServerPort).
		Str("log_level", level.String()).
		Int("vote_rate_limit", cfg.VoteRateLimit).
		Strs("cors_origins", cfg.CORSOrigins).
		Msg("configuration loaded")

	return logger
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(level)

	return logger
}

var Module = fx.Provide(New)
