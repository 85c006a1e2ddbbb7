package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/lrx/log"
)

func Example() {
	logger := log.Make(os.Stdout, log.WithPretty(false), log.WithTimeLayout("none"))
	logger.Info("parsed", slog.String("file", "index.yatt"), slog.Int("parts", 2))

	// Output:
	// {"level":"INFO","msg":"parsed","file":"index.yatt","parts":2}
}

func Example_textFormat() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithLevel(log.LevelTrace),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	logger = logger.With(slog.String("stage", "build"))
	logger.Trace("resume", slog.String("part", "b"))
	logger.Debug("drained")

	// Output:
	// level=TRACE msg=resume stage=build part=b
	// level=DEBUG msg=drained stage=build
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	logger.Info("dropped")
	logger.Warn("kept")

	// Output:
	// {"level":"WARN","msg":"kept"}
}
