// Package cmd implements the subcommands of bk, the command line tool to
// maintain a book: import and fetch price quotes, and prune old transactions.
package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/etnz/book"
	_ "github.com/etnz/book/postgres" // postgres:// books
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

// Commands lists the bk subcommands and their group.
var Commands = []struct {
	Command subcommands.Command
	Group   string
}{
	{&addQuotesCmd{}, "prices"},
	{&getQuotesCmd{}, "prices"},
	{&pricesCmd{}, "prices"},
	{&delTransCmd{}, "transactions"},
	{&accountsCmd{}, "book"},
	{&topicCmd{}, "help"},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "help")
	c.Register(c.FlagsCommand(), "help")
	c.Register(c.CommandsCommand(), "help")
	for _, cmd := range Commands {
		c.Register(cmd.Command, cmd.Group)
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// stdout receives the command results, logs go to stderr.
var stdout io.Writer = os.Stdout

// bookURL returns the book argument, or the configured book.
func bookURL(args []string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case len(args) == 0 && cfg.Book != "":
		return cfg.Book, nil
	case len(args) == 0:
		return "", errors.New("missing book, pass it as argument or set BK_BOOK")
	default:
		return "", errors.New("too many arguments, expected a single book")
	}
}

// openBook begins a session on the book among args.
func openBook(ctx context.Context, args []string, ignoreLock bool) (*book.Session, subcommands.ExitStatus) {
	url, err := bookURL(args)
	if err != nil {
		log.Error().Msgf("%v.", err)
		return nil, subcommands.ExitUsageError
	}
	s, err := book.Open(ctx, url, book.Options{IgnoreLock: ignoreLock})
	if err != nil {
		log.Error().Msgf("Failed to begin session on %s, %v.", url, err)
		return nil, subcommands.ExitFailure
	}
	return s, subcommands.ExitSuccess
}

// saveBook saves the session and logs any error.
func saveBook(ctx context.Context, s *book.Session) subcommands.ExitStatus {
	log.Debug().Msgf("Saving %s...", s.URL())
	if err := s.Save(ctx); err != nil {
		log.Error().Msgf("Failed to save %s, %v.", s.URL(), err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// endSession ends s and logs any error.
func endSession(s *book.Session) {
	if err := s.End(); err != nil {
		log.Error().Msgf("Failed to end session on %s, %v.", s.URL(), err)
	}
}
