package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// LogLevel 日志级别
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug" // 调试
	LogLevelInfo  LogLevel = "info"  // 信息
	LogLevelWarn  LogLevel = "warn"  // 警告
	LogLevelError LogLevel = "error" // 错误
	LogLevelFatal LogLevel = "fatal" // 致命
)

// LogFormat 日志格式
type LogFormat string

const (
	LogFormatText LogFormat = "text" // 文本格式
	LogFormatJSON LogFormat = "json" // JSON格式
)

// LogEntry 日志条目
type LogEntry struct {
	Level    LogLevel  `json:"level"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
	File     string    `json:"file,omitempty"`
	Line     int       `json:"line,omitempty"`
	Function string    `json:"function,omitempty"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        LogLevel  // 日志级别
	Format       LogFormat // 日志格式
	Output       []string  // 输出目标：stdout, stderr, file
	FilePath     string    // 文件路径
	EnableCaller bool      // 启用调用者信息
	TimeFormat   string    // 时间格式
}

// Logger 日志器
type Logger struct {
	config  *LoggerConfig
	outputs []io.Writer
	mu      sync.Mutex
}

// NewLogger 创建日志器实例
func NewLogger(config *LoggerConfig) *Logger {
	if config.TimeFormat == "" {
		config.TimeFormat = time.RFC3339
	}
	if config.Format == "" {
		config.Format = LogFormatText
	}

	logger := &Logger{
		config:  config,
		outputs: make([]io.Writer, 0),
	}
	logger.initOutputs()
	return logger
}

// initOutputs 初始化输出
func (l *Logger) initOutputs() {
	if len(l.config.Output) == 0 {
		l.outputs = append(l.outputs, os.Stdout)
		return
	}

	for _, output := range l.config.Output {
		switch output {
		case "stdout":
			l.outputs = append(l.outputs, os.Stdout)
		case "stderr":
			l.outputs = append(l.outputs, os.Stderr)
		case "file":
			if l.config.FilePath != "" {
				file, err := os.OpenFile(l.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					fmt.Printf("Failed to open log file: %v\n", err)
					continue
				}
				l.outputs = append(l.outputs, file)
			}
		}
	}
}

// write 写入日志
func (l *Logger) write(entry *LogEntry) {
	var output string
	switch l.config.Format {
	case LogFormatJSON:
		output = l.formatJSON(entry)
	default:
		output = l.formatText(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, writer := range l.outputs {
		writer.Write([]byte(output + "\n"))
	}
}

// formatText 格式化文本日志
func (l *Logger) formatText(entry *LogEntry) string {
	format := "%s [%s] %s"
	args := []interface{}{
		entry.Time.Format(l.config.TimeFormat),
		entry.Level,
		entry.Message,
	}

	if l.config.EnableCaller && entry.File != "" {
		format += " %s:%d %s"
		args = append(args, entry.File, entry.Line, entry.Function)
	}

	return fmt.Sprintf(format, args...)
}

// formatJSON 格式化JSON日志
func (l *Logger) formatJSON(entry *LogEntry) string {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":"error","message":"failed to marshal log entry: %v"}`, err)
	}
	return string(data)
}

// log 记录日志
func (l *Logger) log(level LogLevel, message string, args ...interface{}) {
	if !l.isLevelEnabled(level) {
		return
	}

	entry := &LogEntry{
		Level:   level,
		Message: fmt.Sprintf(message, args...),
		Time:    time.Now(),
	}

	if l.config.EnableCaller {
		if pc, file, line, ok := runtime.Caller(2); ok {
			entry.File = filepath.Base(file)
			entry.Line = line
			entry.Function = runtime.FuncForPC(pc).Name()
		}
	}

	l.write(entry)
}

// isLevelEnabled 检查日志级别是否启用
func (l *Logger) isLevelEnabled(level LogLevel) bool {
	levels := map[LogLevel]int{
		LogLevelDebug: 0,
		LogLevelInfo:  1,
		LogLevelWarn:  2,
		LogLevelError: 3,
		LogLevelFatal: 4,
	}

	return levels[level] >= levels[l.config.Level]
}

// Debug 记录调试日志
func (l *Logger) Debug(message string, args ...interface{}) {
	l.log(LogLevelDebug, message, args...)
}

// Info 记录信息日志
func (l *Logger) Info(message string, args ...interface{}) {
	l.log(LogLevelInfo, message, args...)
}

// Warn 记录警告日志
func (l *Logger) Warn(message string, args ...interface{}) {
	l.log(LogLevelWarn, message, args...)
}

// Error 记录错误日志
func (l *Logger) Error(message string, args ...interface{}) {
	l.log(LogLevelError, message, args...)
}

// Fatal 记录致命日志
func (l *Logger) Fatal(message string, args ...interface{}) {
	l.log(LogLevelFatal, message, args...)
	os.Exit(1)
}
