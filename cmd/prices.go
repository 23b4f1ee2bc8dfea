package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/book"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

type pricesCmd struct {
	namespace string
	currency  string
	latest    bool
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "display the prices of a commodity" }
func (*pricesCmd) Usage() string {
	return `bk prices [-namespace <ns>] [-currency <cur>] [-latest] [<book>] SYM

  Displays the price history of SYM in the currency, newest first.
  The book defaults to BK_BOOK.

`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.namespace, "namespace", cfg.Namespace, "namespace of the symbol")
	f.StringVar(&c.currency, "currency", cfg.Currency, "currency of the prices")
	f.BoolVar(&c.latest, "latest", false, "display only the latest price")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		log.Error().Msg("Missing symbol.")
		return subcommands.ExitUsageError
	}
	args := f.Args()
	symbol := args[len(args)-1]

	s, status := openBook(ctx, args[:len(args)-1], true)
	if s == nil {
		return status
	}
	defer endSession(s)

	b := s.Book()
	commodity := b.Commodities().Lookup(c.namespace, symbol)
	if commodity == nil {
		log.Error().Msgf("Failed to find %s in %s.", symbol, c.namespace)
		return subcommands.ExitFailure
	}
	currency := b.Commodities().Lookup(book.CurrencyNamespace, c.currency)
	if currency == nil {
		log.Error().Msgf("Failed to find currency %s.", c.currency)
		return subcommands.ExitFailure
	}

	prices := b.PriceDB().Prices(commodity, currency)
	if c.latest {
		prices = nil
		if p, ok := b.PriceDB().Latest(commodity, currency); ok {
			prices = []*book.Price{p}
		}
	}
	printMarkdown(pricesMarkdown(commodity, currency, prices))
	return subcommands.ExitSuccess
}

// pricesMarkdown renders prices as a table.
func pricesMarkdown(commodity, currency *book.Commodity, prices []*book.Price) string {
	var sb strings.Builder
	title := commodity.Mnemonic
	if commodity.Fullname != "" {
		title += " " + commodity.Fullname
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(prices) == 0 {
		fmt.Fprintf(&sb, "No prices in %s.\n", currency.Mnemonic)
		return sb.String()
	}
	sb.WriteString("| Date | Price | Source |\n")
	sb.WriteString("|:---|---:|:---|\n")
	for _, p := range prices {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", p.Date, currency.Format(p.Value), p.Source)
	}
	return sb.String()
}
