package book

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/etnz/book/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Record kinds of the JSONL book format.
const (
	kindCommodity   = "commodity"
	kindAccount     = "account"
	kindTransaction = "transaction"
	kindPrice       = "price"
)

type commodityRecord struct {
	GUID      GUID   `json:"guid"`
	Namespace string `json:"namespace"`
	Mnemonic  string `json:"mnemonic"`
	Fullname  string `json:"fullname"`
	Fraction  int    `json:"fraction"`
}

type accountRecord struct {
	GUID        GUID        `json:"guid"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Parent      GUID        `json:"parent"`
	Commodity   string      `json:"commodity"`
	Description string      `json:"description"`
	Placeholder bool        `json:"placeholder"`
}

type splitRecord struct {
	GUID      GUID            `json:"guid"`
	Account   GUID            `json:"account"`
	Memo      string          `json:"memo"`
	Action    string          `json:"action"`
	Reconcile string          `json:"reconcile"`
	Value     decimal.Decimal `json:"value"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func (s splitRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("guid", s.GUID)
	w.Append("account", s.Account)
	w.Optional("memo", s.Memo)
	w.Optional("action", s.Action)
	if s.Reconcile != "n" {
		w.Optional("reconcile", s.Reconcile)
	}
	w.Append("value", s.Value)
	w.Append("quantity", s.Quantity)
	return w.MarshalJSON()
}

type transactionRecord struct {
	GUID        GUID          `json:"guid"`
	Date        date.Date     `json:"date"`
	Currency    string        `json:"currency"`
	Num         string        `json:"num"`
	Description string        `json:"description"`
	Splits      []splitRecord `json:"splits"`
}

type priceRecord struct {
	GUID      GUID            `json:"guid"`
	Commodity string          `json:"commodity"`
	Currency  string          `json:"currency"`
	Date      date.Date       `json:"date"`
	Value     decimal.Decimal `json:"value"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
}

// EncodeBook writes b to w in JSONL format: commodities sorted by key,
// accounts depth-first from the root, transactions by date, then prices.
func EncodeBook(w io.Writer, b *Book) error {
	bw := bufio.NewWriter(w)
	writeLine := func(o *jsonObjectWriter) error {
		line, err := o.MarshalJSON()
		if err != nil {
			return err
		}
		bw.Write(line)
		return bw.WriteByte('\n')
	}

	for _, c := range b.commodities.All() {
		var o jsonObjectWriter
		o.Append("kind", kindCommodity)
		o.Append("guid", c.GUID)
		o.Append("namespace", c.Namespace)
		o.Append("mnemonic", c.Mnemonic)
		o.Optional("fullname", c.Fullname)
		o.Append("fraction", c.Fraction)
		if err := writeLine(&o); err != nil {
			return fmt.Errorf("failed to encode commodity %s: %w", c.Key(), err)
		}
	}

	err := b.root.Walk(func(a *Account) error {
		var o jsonObjectWriter
		o.Append("kind", kindAccount)
		o.Append("guid", a.GUID)
		o.Append("name", a.Name)
		o.Append("type", a.Type)
		if a.Parent != nil {
			o.Append("parent", a.Parent.GUID)
		}
		if a.Commodity != nil {
			o.Append("commodity", a.Commodity.Key())
		}
		o.Optional("description", a.Description)
		o.Optional("placeholder", a.Placeholder)
		if err := writeLine(&o); err != nil {
			return fmt.Errorf("failed to encode account %q: %w", a.FullName(), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, tx := range b.Transactions() {
		splits := make([]splitRecord, 0, len(tx.Splits))
		for _, s := range tx.Splits {
			splits = append(splits, splitRecord{
				GUID:      s.GUID,
				Account:   s.Account.GUID,
				Memo:      s.Memo,
				Action:    s.Action,
				Reconcile: s.Reconcile,
				Value:     s.Value,
				Quantity:  s.Quantity,
			})
		}
		var o jsonObjectWriter
		o.Append("kind", kindTransaction)
		o.Append("guid", tx.GUID)
		o.Append("date", tx.Date)
		o.Append("currency", tx.Currency.Key())
		o.Optional("num", tx.Num)
		o.Optional("description", tx.Description)
		o.Append("splits", splits)
		if err := writeLine(&o); err != nil {
			return fmt.Errorf("failed to encode transaction %s: %w", tx.GUID, err)
		}
	}

	for p := range b.prices.All() {
		var o jsonObjectWriter
		o.Append("kind", kindPrice)
		o.Append("guid", p.GUID)
		o.Append("commodity", p.Commodity.Key())
		o.Append("currency", p.Currency.Key())
		o.Append("date", p.Date)
		o.Append("value", p.Value)
		o.Optional("type", p.Type)
		o.Optional("source", p.Source)
		if err := writeLine(&o); err != nil {
			return fmt.Errorf("failed to encode price %s: %w", p.GUID, err)
		}
	}
	return bw.Flush()
}

// DecodeBook reads a book in JSONL format.
//
// Records may appear in any order: they are linked once the whole stream is read.
func DecodeBook(r io.Reader) (*Book, error) {
	var (
		commodities  []commodityRecord
		accounts     []accountRecord
		transactions []transactionRecord
		prices       []priceRecord
		lines        = make(map[any]int) // record to line number, for errors
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify record: %w", line, err)
		}

		var err error
		switch identifier.Kind {
		case kindCommodity:
			var rec commodityRecord
			err = json.Unmarshal(lineBytes, &rec)
			commodities = append(commodities, rec)
		case kindAccount:
			var rec accountRecord
			err = json.Unmarshal(lineBytes, &rec)
			accounts = append(accounts, rec)
			lines[rec.GUID] = line
		case kindTransaction:
			var rec transactionRecord
			err = json.Unmarshal(lineBytes, &rec)
			transactions = append(transactions, rec)
			lines[rec.GUID] = line
		case kindPrice:
			var rec priceRecord
			err = json.Unmarshal(lineBytes, &rec)
			prices = append(prices, rec)
			lines[rec.GUID] = line
		default:
			err = fmt.Errorf("unknown record kind %q", identifier.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}

	b := New()
	for _, rec := range commodities {
		c := &Commodity{GUID: rec.GUID, Namespace: rec.Namespace, Mnemonic: rec.Mnemonic, Fullname: rec.Fullname, Fraction: rec.Fraction}
		if err := b.commodities.Insert(c); err != nil {
			return nil, err
		}
	}
	commodity := func(key string) (*Commodity, error) {
		if key == "" {
			return nil, nil
		}
		c := b.commodities.LookupKey(key)
		if c == nil {
			return nil, fmt.Errorf("unknown commodity %q", key)
		}
		return c, nil
	}

	if err := linkAccounts(b, accounts, commodity, lines); err != nil {
		return nil, err
	}

	for _, rec := range transactions {
		cur, err := commodity(rec.Currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: transaction %s: %w", lines[rec.GUID], rec.GUID, err)
		}
		tx := &Transaction{GUID: rec.GUID, Currency: cur, Date: rec.Date, Num: rec.Num, Description: rec.Description}
		for _, s := range rec.Splits {
			tx.Splits = append(tx.Splits, &Split{
				GUID:      s.GUID,
				Account:   b.Account(s.Account),
				Memo:      s.Memo,
				Action:    s.Action,
				Reconcile: s.Reconcile,
				Value:     s.Value,
				Quantity:  s.Quantity,
			})
		}
		if err := b.AddTransaction(tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", lines[rec.GUID], err)
		}
	}

	for _, rec := range prices {
		c, err := commodity(rec.Commodity)
		if err == nil && c == nil {
			err = errors.New("missing commodity")
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: price %s: %w", lines[rec.GUID], rec.GUID, err)
		}
		cur, err := commodity(rec.Currency)
		if err == nil && cur == nil {
			err = errors.New("missing currency")
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: price %s: %w", lines[rec.GUID], rec.GUID, err)
		}
		p := &Price{GUID: rec.GUID, Commodity: c, Currency: cur, Date: rec.Date, Value: rec.Value, Type: rec.Type, Source: rec.Source}
		if err := b.prices.Add(p); err != nil {
			return nil, fmt.Errorf("line %d: %w", lines[rec.GUID], err)
		}
	}

	b.ClearChanges()
	return b, nil
}

// linkAccounts builds the account tree from records listed in any order.
func linkAccounts(b *Book, records []accountRecord, commodity func(string) (*Commodity, error), lines map[any]int) error {
	byGUID := make(map[GUID]*Account, len(records))
	var root *Account
	for _, rec := range records {
		c, err := commodity(rec.Commodity)
		if err != nil {
			return fmt.Errorf("line %d: account %q: %w", lines[rec.GUID], rec.Name, err)
		}
		if _, dup := byGUID[rec.GUID]; dup {
			return fmt.Errorf("line %d: duplicate account %s", lines[rec.GUID], rec.GUID)
		}
		a := &Account{GUID: rec.GUID, Name: rec.Name, Type: rec.Type, Commodity: c, Description: rec.Description, Placeholder: rec.Placeholder}
		byGUID[rec.GUID] = a
		if rec.Type == Root {
			if root != nil {
				return fmt.Errorf("line %d: a book has a single root account", lines[rec.GUID])
			}
			root = a
			if err := b.SetRoot(a); err != nil {
				return fmt.Errorf("line %d: %w", lines[rec.GUID], err)
			}
		}
	}

	// insert parents before children, whatever the record order.
	var insert func(rec accountRecord, depth int) error
	byRecord := make(map[GUID]accountRecord, len(records))
	for _, rec := range records {
		byRecord[rec.GUID] = rec
	}
	insert = func(rec accountRecord, depth int) error {
		a := byGUID[rec.GUID]
		if a.Type == Root || b.Account(a.GUID) == a {
			return nil
		}
		if depth > len(records) {
			return fmt.Errorf("line %d: account %q: cycle in the account tree", lines[rec.GUID], rec.Name)
		}
		parent := b.root
		if rec.Parent != "" {
			parentRec, ok := byRecord[rec.Parent]
			if !ok {
				return fmt.Errorf("line %d: account %q: unknown parent %s", lines[rec.GUID], rec.Name, rec.Parent)
			}
			if err := insert(parentRec, depth+1); err != nil {
				return err
			}
			parent = byGUID[rec.Parent]
		}
		if err := b.AddAccount(a, parent); err != nil {
			return fmt.Errorf("line %d: %w", lines[rec.GUID], err)
		}
		return nil
	}
	for _, rec := range records {
		if err := insert(rec, 0); err != nil {
			return err
		}
	}
	return nil
}
