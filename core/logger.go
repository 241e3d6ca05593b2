package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel controls which records a logger emits.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLogLevel converts a config string to a LogLevel, defaulting to info.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// ProductionLogger emits structured line-delimited JSON records. In pretty
// mode (development) it emits human-readable text instead. Safe for
// concurrent use.
type ProductionLogger struct {
	mu         sync.Mutex
	out        io.Writer
	level      LogLevel
	pretty     bool
	timeFormat string
	service    string
	component  string
}

// NewProductionLogger creates a logger from the logging and development
// sections of the configuration. Development mode with pretty logs enabled
// switches to text output; debug logging lowers the level floor.
func NewProductionLogger(logging LoggingConfig, development DevelopmentConfig, service string) Logger {
	level := ParseLogLevel(logging.Level)
	if development.DebugLogging {
		level = DebugLevel
	}

	timeFormat := logging.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339Nano
	}

	return &ProductionLogger{
		out:        os.Stdout,
		level:      level,
		pretty:     development.Enabled && development.PrettyLogs || logging.Format == "text",
		timeFormat: timeFormat,
		service:    service,
	}
}

// WithComponent returns a copy of the logger scoped to a component name.
// Nested calls append path segments.
func (l *ProductionLogger) WithComponent(component string) Logger {
	scoped := &ProductionLogger{
		out:        l.out,
		level:      l.level,
		pretty:     l.pretty,
		timeFormat: l.timeFormat,
		service:    l.service,
		component:  component,
	}
	if l.component != "" {
		scoped.component = l.component + "/" + component
	}
	return scoped
}

// SetOutput redirects log output, primarily for tests.
func (l *ProductionLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(DebugLevel, "debug", msg, fields)
}

func (l *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	l.log(InfoLevel, "info", msg, fields)
}

func (l *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(WarnLevel, "warn", msg, fields)
}

func (l *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	l.log(ErrorLevel, "error", msg, fields)
}

func (l *ProductionLogger) log(level LogLevel, label, msg string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pretty {
		fmt.Fprintf(l.out, "%s %-5s %s%s\n",
			time.Now().Format(l.timeFormat),
			strings.ToUpper(label),
			l.prefix(),
			msg)
		if len(fields) > 0 {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(l.out, "    %s=%v\n", k, fields[k])
			}
		}
		return
	}

	record := make(map[string]interface{}, len(fields)+5)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			record[k] = err.Error()
			continue
		}
		record[k] = v
	}
	record["time"] = time.Now().Format(l.timeFormat)
	record["level"] = label
	record["message"] = msg
	if l.service != "" {
		record["service"] = l.service
	}
	if l.component != "" {
		record["component"] = l.component
	}

	line, err := json.Marshal(record)
	if err != nil {
		// Unmarshalable field values should not silence the record.
		fmt.Fprintf(l.out, `{"level":%q,"message":%q,"log_error":%q}`+"\n", label, msg, err.Error())
		return
	}
	fmt.Fprintln(l.out, string(line))
}

func (l *ProductionLogger) prefix() string {
	if l.component != "" {
		return "[" + l.component + "] "
	}
	return ""
}
