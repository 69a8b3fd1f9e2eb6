// Package logger is a thin key/value facade over zerolog shared by every
// package in the module.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/luxfi/safehash/pkg/utils"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init configures the global logger. Production writes JSON lines to
// stderr; every other environment gets the human-readable console writer.
func Init(environment string, debug bool) {
	var out io.Writer = os.Stderr
	if environment != "production" {
		out = utils.ZerologConsoleWriter(os.Stderr)
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	SetOutput(out, level)
}

// SetOutput replaces the log sink and level.
func SetOutput(out io.Writer, level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	log = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Get returns the underlying zerolog logger.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debug(msg string, keyValues ...interface{}) {
	l := Get()
	withFields(l.Debug(), keyValues).Msg(msg)
}

func Info(msg string, keyValues ...interface{}) {
	l := Get()
	withFields(l.Info(), keyValues).Msg(msg)
}

func Warn(msg string, keyValues ...interface{}) {
	l := Get()
	withFields(l.Warn(), keyValues).Msg(msg)
}

// Error logs msg at error level. err may be nil.
func Error(msg string, err error, keyValues ...interface{}) {
	l := Get()
	withFields(l.Error().Err(err), keyValues).Msg(msg)
}

// Fatal logs msg and exits the process.
func Fatal(msg string, err error, keyValues ...interface{}) {
	l := Get()
	withFields(l.Fatal().Err(err), keyValues).Msg(msg)
}

func withFields(e *zerolog.Event, keyValues []interface{}) *zerolog.Event {
	if e == nil {
		return e
	}
	for i := 0; i < len(keyValues); i += 2 {
		key := fmt.Sprint(keyValues[i])
		if i+1 >= len(keyValues) {
			e = e.Str(key, "MISSING")
			break
		}
		e = e.Interface(key, keyValues[i+1])
	}
	return e
}
