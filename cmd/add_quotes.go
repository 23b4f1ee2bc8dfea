package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/etnz/book"
	"github.com/etnz/book/quotes"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

type addQuotesCmd struct {
	dryRun     bool
	purge      bool
	namespace  string
	currency   string
	input      string
	delimiter  string
	ignoreLock bool
}

func (*addQuotesCmd) Name() string     { return "add-quotes" }
func (*addQuotesCmd) Synopsis() string { return "add csv price quotes to the book price database" }
func (*addQuotesCmd) Usage() string {
	return `bk add-quotes [-n] [-p] [-namespace <ns>] [-currency <cur>] [-i <file>] <book>

  Reads share price quotes in csv format and adds them to the book price
  database. The csv header must name the Symbol, Date and Close columns,
  other columns are ignored. Each symbol must exist in the namespace.

  With -p, existing prices of each imported symbol are removed first.

`
}

func (c *addQuotesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "perform a dry run, saving no changes")
	f.BoolVar(&c.dryRun, "dry-run", false, "alias for -n")
	f.BoolVar(&c.purge, "p", false, "purge existing quotes for imported symbols")
	f.BoolVar(&c.purge, "purge", false, "alias for -p")
	f.StringVar(&c.namespace, "namespace", cfg.Namespace, "namespace of the symbols")
	f.StringVar(&c.currency, "currency", cfg.Currency, "currency of the quotes")
	f.StringVar(&c.input, "i", "", "read quotes from `FILE` in csv format (default stdin)")
	f.StringVar(&c.input, "input", "", "alias for -i")
	f.StringVar(&c.delimiter, "delimiter", ",", "csv field delimiter")
	f.BoolVar(&c.ignoreLock, "ignore-lock", false, "open the book even if it is locked")
}

func (c *addQuotesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	comma, err := parseDelimiter(c.delimiter)
	if err != nil {
		log.Error().Msgf("%v.", err)
		return subcommands.ExitUsageError
	}

	var in io.Reader = os.Stdin
	name := "<stdin>"
	if c.input != "" && c.input != "-" {
		file, err := os.Open(c.input)
		if err != nil {
			log.Error().Msgf("Failed to open %s, %v.", c.input, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in, name = file, c.input
	}

	log.Info().Msgf("Reading quotes from %s...", name)
	series, rows, err := quotes.Decode(in, quotes.DecodeOptions{Comma: comma})
	if err != nil {
		log.Error().Msgf("Failed to read quotes from %s, %v.", name, err)
		return subcommands.ExitFailure
	}
	log.Info().Msgf("Ok. Read %d quotes.", rows)
	log.Debug().Msgf("%s <- %v", c.namespace, series.Symbols())

	s, status := openBook(ctx, f.Args(), c.ignoreLock)
	if s == nil {
		return status
	}
	defer endSession(s)

	_, err = s.Book().ImportQuotes(series, book.ImportOptions{
		Namespace: c.namespace,
		Currency:  c.currency,
		Purge:     c.purge,
	})
	if err != nil {
		log.Error().Msgf("%v.", upperFirst(err.Error()))
		return subcommands.ExitFailure
	}

	if c.dryRun {
		log.Info().Msg("Dry run, no changes saved.")
		return subcommands.ExitSuccess
	}
	return saveBook(ctx, s)
}

// parseDelimiter parses a single character delimiter, "\t" meaning tab.
func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q, want a single character", s)
	}
	return r, nil
}

// upperFirst capitalizes the first letter of a log message.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r >= 'a' && r <= 'z' {
		return string(r-'a'+'A') + s[size:]
	}
	return s
}
