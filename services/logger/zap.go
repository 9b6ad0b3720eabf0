package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lernwerk/backoffice/core"
)

type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds the local/development logger. Deployed environments
// use RollbarLogger instead.
func NewZapLogger(conf *core.Config) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	if conf.Debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: logger.Sugar().With("app", conf.AppName)}, nil
}

func (l ZapLogger) Sync() error { return l.sugar.Sync() }

// callers pass loose values rather than key/value pairs; fold them into a
// single structured field so the sugared logger never sees a dangling key
func fields(args []interface{}) []interface{} {
	if len(args) == 0 {
		return nil
	}
	return []interface{}{"details", args}
}

func (l ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugw(msg, fields(args)...) }
func (l ZapLogger) Info(msg string, args ...interface{})  { l.sugar.Infow(msg, fields(args)...) }
func (l ZapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnw(msg, fields(args)...) }
func (l ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorw(msg, fields(args)...) }
func (l ZapLogger) Fatal(msg string, args ...interface{}) { l.sugar.Fatalw(msg, fields(args)...) }
