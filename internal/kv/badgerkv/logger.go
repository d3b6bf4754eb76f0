package badgerkv

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

type logAdapter struct {
	logger *zap.Logger
}

func newLogAdapter(logger *zap.Logger) badger.Logger {
	return &logAdapter{logger: logger}
}

func (l *logAdapter) Errorf(format string, a ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (l *logAdapter) Warningf(format string, a ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (l *logAdapter) Infof(format string, a ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (l *logAdapter) Debugf(format string, a ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, a...)))
}
