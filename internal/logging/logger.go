// Package logging provides a small structured logger with leveled output,
// string-map context fields, and a ring-buffered history of recent entries.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const DefaultHistorySize = 1000

type Logger struct {
	history     *History
	output      *log.Logger
	level       *levelVar
	baseContext map[string]string
}

// levelVar is shared between a logger and everything derived from it, so a
// runtime level change applies to the whole family.
type levelVar struct {
	mutex sync.Mutex
	value Level
}

func NewLogger(minLevel Level) *Logger {
	return NewLoggerWithOutput(NewHistory(DefaultHistorySize), minLevel, os.Stdout)
}

func NewLoggerWithOutput(history *History, minLevel Level, output io.Writer) *Logger {
	if history == nil {
		history = NewHistory(DefaultHistorySize)
	}
	if output == nil {
		output = io.Discard
	}
	return &Logger{
		history: history,
		output:  log.New(output, "", log.LstdFlags),
		level:   &levelVar{value: normalizeLevel(minLevel)},
	}
}

func (logger *Logger) History() *History {
	if logger == nil {
		return nil
	}
	return logger.history
}

// With returns a logger that adds fields to every entry. The derived logger
// shares the history, output, and minimum level with its parent.
func (logger *Logger) With(fields map[string]string) *Logger {
	if logger == nil {
		return nil
	}
	return &Logger{
		history:     logger.history,
		output:      logger.output,
		level:       logger.level,
		baseContext: cloneFields(logger.baseContext, fields),
	}
}

// SetMinLevel changes the minimum level at runtime. Unknown values are
// coerced to info.
func (logger *Logger) SetMinLevel(level Level) {
	if logger == nil {
		return
	}
	logger.level.mutex.Lock()
	logger.level.value = normalizeLevel(level)
	logger.level.mutex.Unlock()
}

func (logger *Logger) MinLevel() Level {
	if logger == nil {
		return LevelInfo
	}
	logger.level.mutex.Lock()
	defer logger.level.mutex.Unlock()
	return logger.level.value
}

func (logger *Logger) Debug(message string, fields map[string]string) {
	logger.log(LevelDebug, message, fields)
}

func (logger *Logger) Info(message string, fields map[string]string) {
	logger.log(LevelInfo, message, fields)
}

func (logger *Logger) Warn(message string, fields map[string]string) {
	logger.log(LevelWarning, message, fields)
}

func (logger *Logger) Error(message string, fields map[string]string) {
	logger.log(LevelError, message, fields)
}

func (logger *Logger) Enabled(level Level) bool {
	if logger == nil {
		return false
	}
	return levelRank(level) >= levelRank(logger.MinLevel())
}

func (logger *Logger) log(level Level, message string, fields map[string]string) {
	if logger == nil || !logger.Enabled(level) {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Context:   cloneFields(logger.baseContext, fields),
	}
	if logger.history != nil {
		logger.history.Add(entry)
	}
	if logger.output != nil {
		logger.output.Print(formatEntry(entry))
	}
}

func normalizeLevel(level Level) Level {
	switch level {
	case LevelDebug, LevelInfo, LevelWarning, LevelError:
		return level
	default:
		return LevelInfo
	}
}

func levelRank(level Level) int {
	switch level {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarning:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

func ParseLevel(value string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warning", "warn":
		return LevelWarning, true
	case "error":
		return LevelError, true
	default:
		return "", false
	}
}

func cloneFields(base, extra map[string]string) map[string]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	combined := make(map[string]string, len(base)+len(extra))
	for key, value := range base {
		combined[key] = value
	}
	for key, value := range extra {
		combined[key] = value
	}
	return combined
}

func formatEntry(entry Entry) string {
	builder := strings.Builder{}
	builder.WriteString("level=")
	builder.WriteString(string(entry.Level))
	builder.WriteString(" msg=")
	builder.WriteString(strconv.Quote(entry.Message))

	if len(entry.Context) == 0 {
		return builder.String()
	}

	keys := make([]string, 0, len(entry.Context))
	for key := range entry.Context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		builder.WriteString(" ")
		builder.WriteString(fmt.Sprintf("%s=%s", key, strconv.Quote(entry.Context[key])))
	}
	return builder.String()
}
