package book

import (
	"fmt"

	"github.com/etnz/book/quotes"
	"github.com/rs/zerolog/log"
)

// ImportOptions controls how quotes become prices.
type ImportOptions struct {
	Namespace string // namespace of the quoted commodities
	Currency  string // ISO code of the quote currency
	Purge     bool   // remove existing prices of each imported commodity first
}

// ImportReport summarizes the import of one symbol.
type ImportReport struct {
	Commodity *Commodity
	Purged    int
	Added     int
}

// ImportQuotes adds the closing prices of series to the price database, one
// symbol at a time in sorted order.
//
// It stops at the first symbol missing from the namespace, or if the currency
// is unknown. Symbols imported before the failure remain in the book.
func (b *Book) ImportQuotes(series quotes.Series, opts ImportOptions) ([]ImportReport, error) {
	var reports []ImportReport
	for _, symbol := range series.Symbols() {
		commodity := b.commodities.Lookup(opts.Namespace, symbol)
		if commodity == nil {
			return reports, fmt.Errorf("failed to find %s in %s", symbol, opts.Namespace)
		}
		log.Debug().Msgf("Found symbol %s in %s.", symbol, opts.Namespace)

		currency := b.commodities.Lookup(CurrencyNamespace, opts.Currency)
		if currency == nil {
			return reports, fmt.Errorf("failed to find currency %s", opts.Currency)
		}
		log.Debug().Msgf("Found currency %s.", currency.Mnemonic)

		report := ImportReport{Commodity: commodity}
		if opts.Purge {
			log.Info().Msgf("Purging quotes for %s in %s...", symbol, opts.Namespace)
			report.Purged = b.prices.Purge(commodity, currency)
		}

		log.Info().Msgf("Adding quotes for %s in %s...", symbol, opts.Namespace)
		for day, close := range series[symbol].Values() {
			num, den, err := Rational(close, PriceMaxDenom)
			if err != nil {
				return reports, fmt.Errorf("cannot convert %s close on %s: %w", symbol, day, err)
			}
			p := &Price{
				Commodity: commodity,
				Currency:  currency,
				Date:      day,
				Value:     FromRational(num, den),
				Type:      PriceTypeLast,
				Source:    PriceSourceUser,
			}
			if err := b.prices.Add(p); err != nil {
				return reports, fmt.Errorf("cannot add %s price on %s: %w", symbol, day, err)
			}
			report.Added++
		}
		log.Info().Msgf("Ok. Added %d quotes for %s.", report.Added, symbol)
		reports = append(reports, report)
	}
	return reports, nil
}
