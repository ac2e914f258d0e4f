package badger

import (
	"fmt"
	"log/slog"

	badgerdb "github.com/dgraph-io/badger/v4"
)

type options struct {
	logger *slog.Logger
}

// Option configures the badger store.
type Option func(*options)

// WithLogger routes badger's internal logging through the given
// structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// badgerLogger adapts slog to badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badgerdb.Logger = (*badgerLogger)(nil)

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	return &badgerLogger{logger: logger.With("component", "badger")}
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.logger.Info(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}
