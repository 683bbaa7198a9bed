package config

import (
	"go.uber.org/zap/zapcore"

	"github.com/esgf/solrsync/log"
)

// LogEncoder defines a log encoder kind.
type LogEncoder = string

const (
	defaultLoggingLevel = zapcore.InfoLevel
	// ConsoleLogEncoder represents logging with plain text.
	ConsoleLogEncoder LogEncoder = log.ConsoleEncoder
	// JSONLogEncoder represents logging with JSON.
	JSONLogEncoder LogEncoder = log.JSONEncoder
)

// LoggerConfig holds the logging level for each module.
type LoggerConfig struct {
	Encoder              LogEncoder `mapstructure:"log-encoder"`
	AppLoggerLevel       string     `mapstructure:"app"`
	ReconcileLoggerLevel string     `mapstructure:"reconcile"`
	SolrLoggerLevel      string     `mapstructure:"solr"`
	SQLLoggerLevel       string     `mapstructure:"sql"`
}

func defaultLoggingConfig() LoggerConfig {
	return LoggerConfig{
		Encoder:              ConsoleLogEncoder,
		AppLoggerLevel:       defaultLoggingLevel.String(),
		ReconcileLoggerLevel: defaultLoggingLevel.String(),
		SolrLoggerLevel:      zapcore.WarnLevel.String(),
		SQLLoggerLevel:       zapcore.WarnLevel.String(),
	}
}

// SetLevel sets every module to level.
func (c *LoggerConfig) SetLevel(level string) {
	c.AppLoggerLevel = level
	c.ReconcileLoggerLevel = level
	c.SolrLoggerLevel = level
	c.SQLLoggerLevel = level
}
