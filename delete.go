package book

import (
	"slices"

	"github.com/etnz/book/date"
	"github.com/rs/zerolog/log"
)

// Deletable reports whether tx is dated within r and all of its splits are
// posted to accounts whose type is in types.
func Deletable(tx *Transaction, r date.Range, types AccountTypes) bool {
	log.Info().Msgf("%s %s", tx.Date, tx.Description)
	ok := r.Contains(tx.Date)
	for _, s := range tx.Splits {
		ok = ok && types.Has(s.Account.Type)
		log.Info().Msgf("\t%s(%d)\t%s", s.Account.Name, s.Account.Type, s.Value.StringFixed(2))
	}
	return ok
}

// DeleteReport summarizes a DeleteTransactions run.
type DeleteReport struct {
	Examined int            // splits examined, skipping those of destroyed transactions
	Deleted  []*Transaction // destroyed transactions, in deletion order
}

// DeleteTransactions walks the account tree from the root, depth-first, and
// destroys every transaction reached through a split that is Deletable.
func (b *Book) DeleteTransactions(r date.Range, types AccountTypes) DeleteReport {
	var report DeleteReport
	b.root.Walk(func(a *Account) error {
		log.Info().Msg("---------------")
		log.Info().Msg(a.Name)
		log.Info().Msg("---------------")
		// destroying a transaction changes the account splits.
		for _, s := range slices.Clone(a.Splits()) {
			tx := s.Transaction
			if b.transactions[tx.GUID] != tx {
				continue // already destroyed through another split
			}
			report.Examined++
			if Deletable(tx, r, types) {
				log.Info().Msg("\tDeletable")
				b.DestroyTransaction(tx)
				report.Deleted = append(report.Deleted, tx)
			} else {
				log.Info().Msg("\tNOT Deletable")
			}
		}
		return nil
	})
	return report
}
