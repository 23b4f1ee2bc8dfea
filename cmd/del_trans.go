package cmd

import (
	"context"
	"flag"

	"github.com/etnz/book"
	"github.com/etnz/book/date"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

// defaultDeleteDate keeps del-trans harmless without dates.
const defaultDeleteDate = "1900-01-01"

type delTransCmd struct {
	dryRun     bool
	start      string
	end        string
	types      string
	ignoreLock bool
}

func (*delTransCmd) Name() string     { return "del-trans" }
func (*delTransCmd) Synopsis() string { return "delete transactions from the book register" }
func (*delTransCmd) Usage() string {
	return `bk del-trans [-n] -s <yyyy-mm-dd> -e <yyyy-mm-dd> [-types <list>] <book>

  Deletes the transactions dated from start to end, inclusive, whose splits
  are all against deletable account types. Transactions are found by walking
  the account tree from the root.

  Deletable types default to BANK,CASH,CREDIT,LIABILITY,INCOME,EXPENSE,EQUITY:
  investments are never touched unless listed with -types.

`
}

func (c *delTransCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "perform a dry run, saving no changes")
	f.BoolVar(&c.dryRun, "dry-run", false, "alias for -n")
	f.StringVar(&c.start, "s", defaultDeleteDate, "start date (yyyy-mm-dd)")
	f.StringVar(&c.start, "start", defaultDeleteDate, "alias for -s")
	f.StringVar(&c.end, "e", defaultDeleteDate, "end date (yyyy-mm-dd)")
	f.StringVar(&c.end, "end", defaultDeleteDate, "alias for -e")
	f.StringVar(&c.types, "types", book.DeletableTypes.String(), "comma separated list of deletable account types")
	f.BoolVar(&c.ignoreLock, "ignore-lock", false, "open the book even if it is locked")
}

func (c *delTransCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start, err := date.Parse(c.start)
	if err != nil {
		log.Error().Msgf("Invalid start date, %v.", err)
		return subcommands.ExitFailure
	}
	end, err := date.Parse(c.end)
	if err != nil {
		log.Error().Msgf("Invalid end date, %v.", err)
		return subcommands.ExitFailure
	}
	r, err := date.Between(start, end)
	if err != nil {
		log.Error().Msg("START must precede END!")
		return subcommands.ExitFailure
	}
	types, err := book.ParseAccountTypes(c.types)
	if err != nil {
		log.Error().Msgf("Invalid account types, %v.", err)
		return subcommands.ExitUsageError
	}

	log.Info().Msgf("Deleting transactions from %s to %s, inclusive...", r.From, r.To)
	s, status := openBook(ctx, f.Args(), c.ignoreLock)
	if s == nil {
		return status
	}
	defer endSession(s)

	report := s.Book().DeleteTransactions(r, types)
	log.Debug().Msgf("Examined %d splits.", report.Examined)
	log.Info().Msgf("Ok. Deleted %d transactions.", len(report.Deleted))

	if c.dryRun {
		log.Info().Msg("Dry run, no changes saved.")
		return subcommands.ExitSuccess
	}
	return saveBook(ctx, s)
}
