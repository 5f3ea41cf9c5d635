package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/forohub/logger"
)

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
}

// parseLogLevel maps database.log_level onto gorm's levels; unknown values
// mean info.
func parseLogLevel(level string) gormlogger.LogLevel {
	if l, ok := gormLevels[strings.ToLower(level)]; ok {
		return l
	}
	return gormlogger.Info
}

// gormLog routes gorm's output through the service logger so SQL lines
// carry the request id and component tag.
type gormLog struct {
	log   *logger.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(log *logger.Logger, slow time.Duration, level gormlogger.LogLevel) gormlogger.Interface {
	if log == nil {
		log = logger.Global()
	}
	return &gormLog{log: log.WithComponent("gorm"), level: level, slow: slow}
}

func (g *gormLog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormLog) enabled(at gormlogger.LogLevel) bool {
	return g.level > gormlogger.Silent && g.level >= at
}

func (g *gormLog) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.enabled(gormlogger.Info) {
		g.log.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLog) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.enabled(gormlogger.Warn) {
		g.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLog) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.enabled(gormlogger.Error) {
		g.log.WithContext(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs one statement. A missing row is how an unknown login shows
// up, so it is not reported as a query error.
func (g *gormLog) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if !g.enabled(gormlogger.Error) {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := g.slow > 0 && elapsed > g.slow
	if !failed && !slow && !g.enabled(gormlogger.Info) {
		return
	}

	sql, rows := fc()
	fields := logger.Fields("sql", sql, "rows", rows, logger.FieldDuration, elapsed.Milliseconds())
	log := g.log.WithContext(ctx)
	switch {
	case failed:
		fields[logger.FieldError] = err.Error()
		log.Error("query failed", fields)
	case slow && g.enabled(gormlogger.Warn):
		log.Warn("slow query", fields)
	case g.enabled(gormlogger.Info):
		log.Debug("query", fields)
	}
}

// ParamsFilter drops bound values before gorm renders a statement, so
// digests and logins never reach the log.
func (g *gormLog) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}
