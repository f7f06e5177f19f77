package logger

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xavierca1/ligue-crm/internal/config"
)

// Service is attached to every entry as the "service" field.
const Service = "ligue-crm"

const sinkPerm = 0o644

// New builds the process logger. Sink is "stdout", "stderr" or a file path
// opened for append. Colored levels are used only for console output on a
// terminal stream; files and JSON output stay plain.
func New(cfg config.Logger, opts ...zap.Option) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	out, tty, err := openSink(cfg.Sink)
	if err != nil {
		return nil, err
	}

	var enc zapcore.Encoder
	switch cfg.Encoding {
	case "json":
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "time"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	case "", "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("[2006-01-02 15:04:05]")
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		if tty {
			ec.EncodeLevel = levelColors
		}
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		return nil, fmt.Errorf("log encoding %q: want console or json", cfg.Encoding)
	}

	opts = append([]zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", Service)),
	}, opts...)
	return zap.New(zapcore.NewCore(enc, out, level), opts...), nil
}

func openSink(sink string) (zapcore.WriteSyncer, bool, error) {
	switch sink {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), true, nil
	case "stderr":
		return zapcore.Lock(os.Stderr), true, nil
	}
	f, err := os.OpenFile(sink, os.O_WRONLY|os.O_CREATE|os.O_APPEND, sinkPerm)
	if err != nil {
		return nil, false, fmt.Errorf("open log sink: %w", err)
	}
	return zapcore.AddSync(f), false, nil
}

var levelColor = map[zapcore.Level]func(string, ...any) string{
	zapcore.DebugLevel: color.MagentaString,
	zapcore.InfoLevel:  color.BlueString,
	zapcore.WarnLevel:  color.YellowString,
	zapcore.ErrorLevel: color.RedString,
}

func levelColors(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if paint, ok := levelColor[l]; ok {
		enc.AppendString(paint(l.CapitalString()))
		return
	}
	enc.AppendString(color.HiRedString(l.CapitalString()))
}
