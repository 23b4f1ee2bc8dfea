package book

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// RootAccountName is the name given to the root of a new book.
const RootAccountName = "Root Account"

// Book holds accounts, transactions, commodities and prices.
type Book struct {
	commodities  *CommodityTable
	root         *Account
	accounts     map[GUID]*Account
	transactions map[GUID]*Transaction
	prices       *PriceDB
	changes      changeLog
}

// New returns an empty book with only a root account.
func New() *Book {
	b := &Book{
		accounts:     make(map[GUID]*Account),
		transactions: make(map[GUID]*Transaction),
	}
	b.commodities = newCommodityTable(b)
	b.prices = newPriceDB(b)
	b.root = &Account{GUID: NewGUID(), Name: RootAccountName, Type: Root}
	b.accounts[b.root.GUID] = b.root
	b.changes.reset()
	return b
}

// Root returns the root account.
func (b *Book) Root() *Account { return b.root }

// SetRoot replaces the root account of a book that has no other account.
func (b *Book) SetRoot(a *Account) error {
	if len(b.accounts) > 1 || len(b.root.splits) > 0 {
		return errors.New("cannot replace the root account of a book with accounts")
	}
	if a.Type != Root {
		return fmt.Errorf("cannot use %s account %q as root", a.Type, a.Name)
	}
	if a.GUID == "" {
		a.GUID = NewGUID()
	}
	delete(b.accounts, b.root.GUID)
	a.Parent = nil
	b.root = a
	b.accounts[a.GUID] = a
	return nil
}

// Commodities returns the commodity table.
func (b *Book) Commodities() *CommodityTable { return b.commodities }

// PriceDB returns the price database.
func (b *Book) PriceDB() *PriceDB { return b.prices }

// Account returns the account with the given GUID or nil.
func (b *Book) Account(guid GUID) *Account { return b.accounts[guid] }

// FindAccount returns the account with the given colon separated full name or nil.
func (b *Book) FindAccount(fullName string) *Account {
	a := b.root
	for _, name := range strings.Split(fullName, ":") {
		i := slices.IndexFunc(a.children, func(c *Account) bool { return c.Name == name })
		if i < 0 {
			return nil
		}
		a = a.children[i]
	}
	return a
}

// AddAccount inserts a under parent, a nil parent being the root account.
func (b *Book) AddAccount(a *Account, parent *Account) error {
	if parent == nil {
		parent = b.root
	}
	if b.accounts[parent.GUID] != parent {
		return fmt.Errorf("cannot add account %q: parent %q is not in the book", a.Name, parent.Name)
	}
	if a.Type == Root {
		return fmt.Errorf("cannot add account %q: a book has a single root account", a.Name)
	}
	if a.GUID == "" {
		a.GUID = NewGUID()
	}
	if _, exists := b.accounts[a.GUID]; exists {
		return fmt.Errorf("cannot add account %q: duplicate guid %s", a.Name, a.GUID)
	}
	b.accounts[a.GUID] = a
	parent.addChild(a)
	return nil
}

// Transaction returns the transaction with the given GUID or nil.
func (b *Book) Transaction(guid GUID) *Transaction { return b.transactions[guid] }

// Transactions returns all transactions sorted by date.
func (b *Book) Transactions() []*Transaction {
	txs := make([]*Transaction, 0, len(b.transactions))
	for _, tx := range b.transactions {
		txs = append(txs, tx)
	}
	slices.SortFunc(txs, func(x, y *Transaction) int {
		if c := x.Date.Compare(y.Date); c != 0 {
			return c
		}
		return strings.Compare(string(x.GUID), string(y.GUID))
	})
	return txs
}

// AddTransaction inserts tx and posts its splits to their accounts.
func (b *Book) AddTransaction(tx *Transaction) error {
	if tx.GUID == "" {
		tx.GUID = NewGUID()
	}
	if _, exists := b.transactions[tx.GUID]; exists {
		return fmt.Errorf("duplicate transaction %s", tx.GUID)
	}
	if tx.Currency == nil {
		return fmt.Errorf("transaction %s: missing currency", tx.GUID)
	}
	var errs error
	for _, s := range tx.Splits {
		if s.Account == nil || b.accounts[s.Account.GUID] != s.Account {
			errs = errors.Join(errs, fmt.Errorf("transaction %s: split %s has an account that is not in the book", tx.GUID, s.GUID))
		}
	}
	if errs != nil {
		return errs
	}
	for _, s := range tx.Splits {
		if s.GUID == "" {
			s.GUID = NewGUID()
		}
		if s.Reconcile == "" {
			s.Reconcile = "n"
		}
		s.Transaction = tx
		s.Account.splits = append(s.Account.splits, s)
	}
	b.transactions[tx.GUID] = tx
	return nil
}

// DestroyTransaction removes tx and its splits from the book.
// It returns false if tx was not in the book.
func (b *Book) DestroyTransaction(tx *Transaction) bool {
	if b.transactions[tx.GUID] != tx {
		return false
	}
	for _, s := range tx.Splits {
		s.Account.removeSplit(s)
	}
	delete(b.transactions, tx.GUID)
	b.changes.destroy(tx)
	return true
}

// Changes returns what changed since the book was loaded or last saved.
func (b *Book) Changes() Changes { return b.changes.collect() }

// ClearChanges forgets the changes, typically after a save.
func (b *Book) ClearChanges() { b.changes.reset() }

// Changes lists the mutations of a book, for backends that save incrementally.
type Changes struct {
	Commodities           []*Commodity
	AddedPrices           []*Price
	RemovedPrices         []*Price
	DestroyedTransactions []*Transaction
}

// IsEmpty reports whether there is nothing to save.
func (c Changes) IsEmpty() bool {
	return len(c.Commodities)+len(c.AddedPrices)+len(c.RemovedPrices)+len(c.DestroyedTransactions) == 0
}

type changeLog struct {
	commodities   map[GUID]*Commodity
	addedPrices   map[GUID]*Price
	removedPrices map[GUID]*Price
	destroyed     map[GUID]*Transaction
}

func (l *changeLog) reset() {
	l.commodities = make(map[GUID]*Commodity)
	l.addedPrices = make(map[GUID]*Price)
	l.removedPrices = make(map[GUID]*Price)
	l.destroyed = make(map[GUID]*Transaction)
}

func (l *changeLog) commodity(c *Commodity) { l.commodities[c.GUID] = c }

func (l *changeLog) addPrice(p *Price) { l.addedPrices[p.GUID] = p }

func (l *changeLog) removePrice(p *Price) {
	if _, added := l.addedPrices[p.GUID]; added {
		// never saved, nothing to remove.
		delete(l.addedPrices, p.GUID)
		return
	}
	l.removedPrices[p.GUID] = p
}

func (l *changeLog) destroy(tx *Transaction) { l.destroyed[tx.GUID] = tx }

func (l *changeLog) collect() Changes {
	return Changes{
		Commodities:           sortedValues(l.commodities),
		AddedPrices:           sortedValues(l.addedPrices),
		RemovedPrices:         sortedValues(l.removedPrices),
		DestroyedTransactions: sortedValues(l.destroyed),
	}
}

func sortedValues[T any](m map[GUID]T) []T {
	keys := make([]GUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	values := make([]T, 0, len(keys))
	for _, k := range keys {
		values = append(values, m[k])
	}
	return values
}
