package book

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBook(t *testing.T) {
	b := testBook(t)
	var buf bytes.Buffer
	require.NoError(t, EncodeBook(&buf, b))

	got, err := DecodeBook(&buf)
	require.NoError(t, err)
	assert.True(t, got.Changes().IsEmpty(), "a decoded book has no changes")

	assert.Equal(t, b.Root().GUID, got.Root().GUID)
	for _, a := range b.accounts {
		ga := got.Account(a.GUID)
		require.NotNil(t, ga, a.FullName())
		assert.Equal(t, a.FullName(), ga.FullName())
		assert.Equal(t, a.Type, ga.Type)
		assert.Len(t, ga.Splits(), len(a.Splits()))
	}

	require.Len(t, got.Transactions(), len(b.Transactions()))
	for _, tx := range b.Transactions() {
		gtx := got.Transaction(tx.GUID)
		require.NotNil(t, gtx)
		assert.Equal(t, tx.Date, gtx.Date)
		assert.Equal(t, tx.Description, gtx.Description)
		assert.Equal(t, tx.Currency.Key(), gtx.Currency.Key())
		require.Len(t, gtx.Splits, len(tx.Splits))
		for i, s := range tx.Splits {
			gs := gtx.Splits[i]
			assert.Equal(t, s.GUID, gs.GUID)
			assert.Equal(t, s.Account.GUID, gs.Account.GUID)
			assert.True(t, s.Value.Equal(gs.Value), "%v != %v", s.Value, gs.Value)
			assert.Equal(t, "n", gs.Reconcile)
		}
	}

	assert.Equal(t, b.PriceDB().Len(), got.PriceDB().Len())
	bhp := got.Commodities().Lookup("ASX", "BHP")
	require.NotNil(t, bhp)
	assert.Equal(t, "BHP Group", bhp.Fullname)
	p, ok := got.PriceDB().Latest(bhp, got.Commodities().Lookup(CurrencyNamespace, "AUD"))
	require.True(t, ok)
	assert.Equal(t, "44", p.Value.String())
	assert.Equal(t, PriceTypeLast, p.Type)
	assert.Equal(t, PriceSourceUser, p.Source)

	// encoding is deterministic
	var again, twice bytes.Buffer
	require.NoError(t, EncodeBook(&again, got))
	require.NoError(t, EncodeBook(&twice, got))
	assert.Equal(t, again.String(), twice.String())
}

func TestEncodeBook_Format(t *testing.T) {
	b := testBook(t)
	var buf bytes.Buffer
	require.NoError(t, EncodeBook(&buf, b))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	kinds := []string{}
	for _, line := range lines {
		kind := line[len(`{"kind":"`):strings.Index(line, `","`)]
		if len(kinds) == 0 || kinds[len(kinds)-1] != kind {
			kinds = append(kinds, kind)
		}
	}
	assert.Equal(t, []string{"commodity", "account", "transaction", "price"}, kinds)
	assert.Contains(t, buf.String(), `"type":"BANK"`)
	assert.Contains(t, buf.String(), `"value":44,`)
}

func TestDecodeBook_AnyOrder(t *testing.T) {
	input := `
{"kind":"price","guid":"p1","commodity":"ASX:BHP","currency":"CURRENCY:AUD","date":"2024-01-02","value":45.5}
{"kind":"account","guid":"a2","name":"Bank","type":"BANK","parent":"a1","commodity":"CURRENCY:AUD"}
{"kind":"account","guid":"a1","name":"Assets","type":"ASSET","parent":"r"}
{"kind":"account","guid":"r","name":"Root Account","type":"ROOT"}
{"kind":"commodity","guid":"c1","namespace":"ASX","mnemonic":"BHP","fraction":1}
{"kind":"commodity","guid":"c2","namespace":"CURRENCY","mnemonic":"AUD","fraction":100}
`
	b, err := DecodeBook(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, GUID("r"), b.Root().GUID)
	bank := b.FindAccount("Assets:Bank")
	require.NotNil(t, bank)
	assert.Equal(t, GUID("a2"), bank.GUID)
	assert.Equal(t, 1, b.PriceDB().Len())
}

func TestDecodeBook_Errors(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"not json", "{", "line 1"},
		{"unknown kind", `{"kind":"budget"}`, `line 1: unknown record kind "budget"`},
		{"unknown parent", `{"kind":"account","guid":"a","name":"A","type":"BANK","parent":"x"}`, "unknown parent"},
		{"unknown commodity", "\n" + `{"kind":"account","guid":"a","name":"A","type":"BANK","commodity":"ASX:BHP"}`, `line 2: account "A": unknown commodity "ASX:BHP"`},
		{"bad type", `{"kind":"account","guid":"a","name":"A","type":"BOGUS"}`, "line 1"},
		{"cycle", `{"kind":"account","guid":"a","name":"A","type":"BANK","parent":"b"}
{"kind":"account","guid":"b","name":"B","type":"BANK","parent":"a"}`, "cycle"},
		{"unknown split account", `{"kind":"transaction","guid":"t","date":"2024-01-01","currency":"CURRENCY:AUD","splits":[{"guid":"s","account":"x","value":1,"quantity":1}]}`, "line 1"},
		{"missing price commodity", `{"kind":"price","guid":"p","currency":"CURRENCY:AUD","date":"2024-01-01","value":1}`, "missing commodity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBook(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
