package gorm

import gormlogger "gorm.io/gorm/logger"

// LogLevelFromString maps a configured log level name to a GORM logger level
func LogLevelFromString(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
