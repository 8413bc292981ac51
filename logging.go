package place2b

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// colorEnabled reports whether w is a terminal that wants ANSI colour.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func logLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// replaceErr paints error values red on a colour console and flattens them
// to their message everywhere else.
func replaceErr(color bool) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, attr slog.Attr) slog.Attr {
		err, ok := attr.Value.Any().(error)
		switch {
		case !ok:
			return attr
		case color:
			return tint.Attr(9, attr)
		default:
			return slog.String(attr.Key, err.Error())
		}
	}
}

// NewLogHandler returns the console handler used by the server and CLI.
// Debug adds source locations and debug lines.
func NewLogHandler(debug bool, out io.Writer) slog.Handler {
	color := colorEnabled(out)
	return tint.NewHandler(out, &tint.Options{
		AddSource:   debug,
		Level:       logLevel(debug),
		ReplaceAttr: replaceErr(color),
		TimeFormat:  time.RFC3339,
		NoColor:     !color,
	})
}

// NewAccessLog returns a logger writing JSON lines to a rotating file.
// The caller closes the returned writer on shutdown.
func NewAccessLog(filename string) (*slog.Logger, io.Closer) {
	w := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       logLevel(false),
		ReplaceAttr: replaceErr(false),
	})
	return slog.New(h), w
}
