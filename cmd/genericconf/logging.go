// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package genericconf

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var globalFileWriter = &fileWriter{}

// fileWriter queues log records for a rotating file. Records that do not fit in the queue are dropped so
// that a slow disk never stalls the node.
type fileWriter struct {
	mutex   sync.Mutex
	records chan []byte
	done    chan struct{}
	writer  io.WriteCloser
}

func (w *fileWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.records == nil {
		return len(p), nil
	}
	record := make([]byte, len(p))
	copy(record, p)
	select {
	case w.records <- record:
	default:
	}
	return len(p), nil
}

func (w *fileWriter) open(config *FileLoggingConfig, filename string) io.Writer {
	writer := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		LocalTime:  config.LocalTime,
		Compress:   config.Compress,
	}
	w.openWith(writer, config.BufSize)
	return w
}

func (w *fileWriter) openWith(writer io.WriteCloser, bufSize int) {
	records := make(chan []byte, bufSize)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for record := range records {
			_, _ = writer.Write(record)
		}
	}()
	w.mutex.Lock()
	w.records, w.done, w.writer = records, done, writer
	w.mutex.Unlock()
}

// close flushes queued records and closes the file.
func (w *fileWriter) close() error {
	w.mutex.Lock()
	records, done, writer := w.records, w.done, w.writer
	w.records, w.done, w.writer = nil, nil, nil
	w.mutex.Unlock()
	if records == nil {
		return nil
	}
	close(records)
	<-done
	return writer.Close()
}

// InitLog installs the default logger. It is not safe to call concurrently.
func InitLog(logType string, logLevel string, fileLoggingConfig *FileLoggingConfig, pathResolver func(string) string) error {
	if err := globalFileWriter.close(); err != nil {
		return fmt.Errorf("failed to close file writer: %w", err)
	}
	output := io.Writer(os.Stderr)
	if fileLoggingConfig.Enable {
		output = io.MultiWriter(output, globalFileWriter.open(fileLoggingConfig, pathResolver(fileLoggingConfig.File)))
	}
	handler, err := HandlerFromLogType(logType, output)
	if err != nil {
		return fmt.Errorf("error parsing log type when creating handler: %w", err)
	}
	level, err := ToSlogLevel(logLevel)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(level)
	log.SetDefault(log.NewLogger(glogger))
	return nil
}

// CloseLog flushes the file logger, if any.
func CloseLog() error {
	return globalFileWriter.close()
}

func HandlerFromLogType(logType string, output io.Writer) (slog.Handler, error) {
	switch logType {
	case "plaintext":
		return log.NewTerminalHandler(output, false), nil
	case "json":
		return log.JSONHandler(output), nil
	default:
		return nil, fmt.Errorf("invalid log type %q, expected plaintext or json", logType)
	}
}

// ToSlogLevel accepts a level name or a legacy numeric verbosity from 0 (crit) to 5 (trace).
func ToSlogLevel(logLevel string) (slog.Level, error) {
	switch strings.ToLower(logLevel) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	}
	verbosity, err := strconv.Atoi(logLevel)
	if err != nil || verbosity < 0 || verbosity > 5 {
		return 0, fmt.Errorf("invalid log level %q", logLevel)
	}
	return log.FromLegacyLevel(verbosity), nil
}
