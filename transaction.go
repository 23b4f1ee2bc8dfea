package book

import (
	"github.com/etnz/book/date"
	"github.com/shopspring/decimal"
)

// Transaction is a dated set of splits that balance in the transaction currency.
type Transaction struct {
	GUID        GUID
	Currency    *Commodity
	Date        date.Date
	Num         string
	Description string
	Splits      []*Split
}

// Split posts a value of a transaction to an account.
type Split struct {
	GUID        GUID
	Transaction *Transaction
	Account     *Account
	Memo        string
	Action      string
	Reconcile   string          // n, c, y, f or v
	Value       decimal.Decimal // in the transaction currency
	Quantity    decimal.Decimal // in the account commodity
}

// Balance returns the sum of the split values. A balanced transaction has a zero balance.
func (tx *Transaction) Balance() decimal.Decimal {
	var total decimal.Decimal
	for _, s := range tx.Splits {
		total = total.Add(s.Value)
	}
	return total
}
