// Package logger owns the process-wide zap sugared logger and a few helpers
// for keeping personal data (participant emails, connection strings) out of logs.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// IsTest switches the logger to a quiet stdout development config.
var IsTest bool

func build() {
	level := zapcore.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	var cfg zap.Config
	switch {
	case IsTest:
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stdout"}
		if os.Getenv("LOG_LEVEL") == "" {
			level = zapcore.WarnLevel
		}
	case os.Getenv("SERVER_ENVIRONMENT") == "production" || os.Getenv("ENVIRONMENT") == "production":
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger = zl.Sugar()
}

// InitLogger builds the global logger. Safe to call more than once.
func InitLogger() {
	once.Do(build)
}

// GetLogger returns the global logger, building it on first use.
func GetLogger() *zap.SugaredLogger {
	once.Do(build)
	return logger
}

// Close flushes buffered entries.
func Close() error {
	if logger == nil || IsTest {
		return nil
	}
	if err := logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Error syncing logger: %v\n", err)
		return err
	}
	return nil
}

// MaskSensitiveString keeps the first prefixLen and last suffixLen characters.
// Short inputs are fully starred so their length is the only thing revealed.
func MaskSensitiveString(s string, prefixLen, suffixLen int) string {
	if s == "" {
		return ""
	}
	if len(s) < prefixLen+suffixLen+3 {
		return strings.Repeat("*", len(s))
	}
	return s[:prefixLen] + "..." + s[len(s)-suffixLen:]
}

// MaskEmail hides the local part of an email address. Identifiers that are
// not emails (short user ids) are masked as plain strings.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return MaskSensitiveString(email, 2, 2)
	}
	return MaskSensitiveString(email[:at], 2, 1) + email[at:]
}

// MaskConnectionString replaces the password of a URL-style DSN.
func MaskConnectionString(dsn string) string {
	scheme := strings.Index(dsn, "://")
	if scheme == -1 {
		return dsn
	}
	rest := dsn[scheme+3:]
	at := strings.Index(rest, "@")
	if at == -1 {
		return dsn
	}
	userInfo := rest[:at]
	colon := strings.Index(userInfo, ":")
	if colon == -1 {
		return dsn
	}
	return dsn[:scheme+3] + userInfo[:colon] + ":***" + rest[at:]
}
