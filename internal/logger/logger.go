package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger = logrus.New()
	once   sync.Once
)

type Fields = logrus.Fields

// Options configures the process logger
type Options struct {
	Level   string // logrus level name, "info" when empty
	File    string // rotating log file, disabled when empty
	NoColor bool
	Output  io.Writer // defaults to os.Stderr
}

// New configures the shared logger once and returns it.
// Later calls return the already configured instance.
func New(opts Options) *logrus.Logger {
	once.Do(func() {
		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&formatter.Formatter{
			NoColors:        opts.NoColor,
			TimestampFormat: "02 Jan 06 - 15:04:05",
			HideKeys:        false,
			FieldsOrder:     []string{"caller"},
		})

		var out io.Writer = os.Stderr
		if opts.Output != nil {
			out = opts.Output
		}
		writers := []io.Writer{out}

		if opts.File != "" {
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.File,
				LocalTime:  true,
				Compress:   true,
				MaxSize:    10,
				MaxAge:     7,
				MaxBackups: 3,
			})
		}

		logger.SetOutput(io.MultiWriter(writers...))
	})

	return logger
}

func Debug(fields Fields, msg string) {
	withCaller(fields).Debug(msg)
}

func Info(fields Fields, msg string) {
	withCaller(fields).Info(msg)
}

func Warn(fields Fields, msg string) {
	withCaller(fields).Warn(msg)
}

func Error(fields Fields, msg string) {
	withCaller(fields).Error(msg)
}

// ErrorWithTraceID logs msg with a fresh trace ID and returns it so the
// caller can show it to the user.
func ErrorWithTraceID(fields Fields, msg string) string {
	traceID := "unknown"
	if id, err := uuid.NewRandom(); err == nil {
		traceID = id.String()
	}

	entry := withCaller(fields)
	entry.WithField("trace_id", traceID).Error(msg)

	return traceID
}

// withCaller copies fields and adds the position of the code that called
// the package helper. Must be called directly from an exported helper.
func withCaller(fields Fields) *logrus.Entry {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}

	// frames: withCaller, the helper, its caller
	pcs := make([]uintptr, 3)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(1, pcs)])
	for i := 0; ; i++ {
		frame, more := frames.Next()
		if i == 2 {
			fn := frame.Function[strings.LastIndex(frame.Function, ".")+1:]
			out["caller"] = fmt.Sprintf("%s:%d %s()", path.Base(frame.File), frame.Line, fn)
			break
		}
		if !more {
			break
		}
	}

	return logger.WithFields(out)
}
