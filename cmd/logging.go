package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	verbose = flag.Bool("v", false, "increase verbosity")
	quiet   = flag.Bool("q", false, "suppress non-error messages")
)

// Setup loads the configuration and configures logging to stderr.
// It must be called once the global flags are parsed.
func Setup() error {
	c, err := LoadConfig()
	if err != nil {
		return err
	}
	cfg = c
	return setupLogging(os.Stderr, cfg.LogLevel, *verbose, *quiet)
}

// setupLogging writes "LEVEL: message" lines to w.
func setupLogging(w io.Writer, level string, verbose, quiet bool) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	switch {
	case verbose && quiet:
		return errors.New("-v and -q are mutually exclusive")
	case verbose:
		lvl = zerolog.DebugLevel
	case quiet:
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
		FormatLevel: func(i any) string {
			return strings.ToUpper(fmt.Sprint(i)) + ":"
		},
	})
	return nil
}
