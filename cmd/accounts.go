package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/book"
	"github.com/google/subcommands"
)

type accountsCmd struct {
	splits bool
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "display the account tree of a book" }
func (*accountsCmd) Usage() string {
	return `bk accounts [-splits] <book>

  Displays the account tree with the type of each account.
  The book is opened read-only, ignoring any lock.

`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.splits, "splits", false, "show the number of splits of each account")
}

func (c *accountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, status := openBook(ctx, f.Args(), true)
	if s == nil {
		return status
	}
	defer endSession(s)

	printMarkdown(accountsMarkdown(s.Book(), c.splits))
	return subcommands.ExitSuccess
}

// accountsMarkdown renders the account tree as a nested list.
func accountsMarkdown(b *book.Book, splits bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Accounts\n\n")
	root := b.Root()
	var write func(a *book.Account, depth int)
	write = func(a *book.Account, depth int) {
		fmt.Fprintf(&sb, "%s- **%s** %s", strings.Repeat("  ", depth), a.Name, a.Type)
		if a.Commodity != nil {
			fmt.Fprintf(&sb, " in %s", a.Commodity.Mnemonic)
		}
		if splits {
			fmt.Fprintf(&sb, ", %d splits", len(a.Splits()))
		}
		sb.WriteString("\n")
		for _, child := range a.Children() {
			write(child, depth+1)
		}
	}
	for _, child := range root.Children() {
		write(child, 0)
	}
	return sb.String()
}
