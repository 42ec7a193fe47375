package reply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/daszybak/predictit_bot/internal/predictit"
)

type fakeShortener struct {
	calls []string
	err   error
}

func (f *fakeShortener) Shorten(_ context.Context, longURL string) (string, error) {
	f.calls = append(f.calls, longURL)
	if f.err != nil {
		return "", f.err
	}
	return "https://short/" + fmt.Sprint(len(f.calls)), nil
}

func contract(name, ticker, trade string, closePrice ...string) *predictit.Contract {
	c := &predictit.Contract{
		Name:           name,
		TickerSymbol:   ticker,
		URL:            "https://www.predictit.org/Contract/" + ticker,
		LastTradePrice: decimal.RequireFromString(trade),
	}
	if len(closePrice) > 0 {
		c.LastClosePrice = decimal.NewNullDecimal(decimal.RequireFromString(closePrice[0]))
	}
	return c
}

func market(contracts ...*predictit.Contract) *predictit.Market {
	return &predictit.Market{
		Name:      "Who wins?",
		URL:       "https://www.predictit.org/Market/1",
		Contracts: contracts,
	}
}

func TestBuild_SingleContract(t *testing.T) {
	sh := &fakeShortener{}
	b := NewBuilder(sh, IRC{}, nil)

	m := market(contract("Will it rain?", "RAIN", "0.55", "0.54"))
	got := b.Build(context.Background(), m, "RAIN")

	want := []string{"\x02Will it rain?\x02 | https://short/1 | Last Trade: $0.55 (\x0303↑1¢\x03)"}
	if !equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(sh.calls) != 1 || sh.calls[0] != m.URL {
		t.Errorf("shortener calls = %q, want only the market URL", sh.calls)
	}
}

func TestBuild_MultipleContracts(t *testing.T) {
	b := NewBuilder(&fakeShortener{}, Plain{}, nil)

	m := market(
		contract("Democratic", "DEM.USPREZ20", "0.55", "0.54"),
		contract("Republican", "REP.USPREZ20", "0.45"),
		contract("Libertarian", "LIB.USPREZ20", "0.02", "0.05"),
	)
	got := b.Build(context.Background(), m, "USPREZ20")

	want := []string{
		"Who wins? | https://short/1",
		"Democratic  | Last Trade: $0.55 (↑1¢)",
		"Republican  | Last Trade: $0.45 (---)",
		"Libertarian | Last Trade: $0.02 (↓3¢)",
	}
	if !equal(got, want) {
		t.Errorf("got\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestBuild_TruncatesToFirstFive(t *testing.T) {
	b := NewBuilder(nil, Plain{}, nil)

	m := market(
		contract("A", "A.M", "0.10"),
		contract("Bb", "B.M", "0.10"),
		contract("Ccc", "C.M", "0.10"),
		contract("Dddd", "D.M", "0.10"),
		contract("Eeeee", "E.M", "0.10"),
		contract("A much longer sixth name", "F.M", "0.10"),
		contract("Seventh", "G.M", "0.10"),
	)
	got := b.Build(context.Background(), m, "M")

	if len(got) != 1+MaxContracts {
		t.Fatalf("len = %d, want %d: %q", len(got), 1+MaxContracts, got)
	}
	if got[0] != "Who wins? | https://www.predictit.org/Market/1" {
		t.Errorf("header = %q", got[0])
	}
	want := []string{
		"A     | Last Trade: $0.10 (---)",
		"Bb    | Last Trade: $0.10 (---)",
		"Ccc   | Last Trade: $0.10 (---)",
		"Dddd  | Last Trade: $0.10 (---)",
		"Eeeee | Last Trade: $0.10 (---)",
	}
	if !equal(got[1:], want) {
		t.Errorf("got\n%s\nwant\n%s", strings.Join(got[1:], "\n"), strings.Join(want, "\n"))
	}
}

func TestBuild_RequestedContractIsNotPadded(t *testing.T) {
	sh := &fakeShortener{}
	b := NewBuilder(sh, Plain{}, nil)

	m := market(
		contract("Bar", "FOO.BAR", "0.55"),
		contract("Bazooka", "FOO.BAZ", "0.40", "0.41"),
	)
	got := b.Build(context.Background(), m, "FOO.BAR")

	want := []string{
		"Who wins? | https://short/1",
		"Bar | Last Trade: $0.55 (---)",
		"Bazooka | Last Trade: $0.40 (↓1¢)",
	}
	if !equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(sh.calls) != 2 || sh.calls[1] != "https://www.predictit.org/Contract/FOO.BAR" {
		t.Errorf("shortener calls = %q, want market then requested contract", sh.calls)
	}
}

func TestBuild_DifferentDepthIsAlwaysSibling(t *testing.T) {
	b := NewBuilder(nil, Plain{}, nil)

	m := market(
		contract("Bar", "FOO.BAR", "0.55"),
		contract("Baz", "FOO", "0.40"),
	)
	got := b.Build(context.Background(), m, "FOO.BAR.QUX")

	want := []string{
		"Who wins? | https://www.predictit.org/Market/1",
		"Bar | Last Trade: $0.55 (---)",
		"Baz | Last Trade: $0.40 (---)",
	}
	if !equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuild_Empty(t *testing.T) {
	b := NewBuilder(&fakeShortener{}, IRC{}, nil)

	if got := b.Build(context.Background(), market(), "X"); len(got) != 0 {
		t.Errorf("got %q, want no lines", got)
	}
	if got := b.Build(context.Background(), nil, "X"); len(got) != 0 {
		t.Errorf("got %q for nil market, want no lines", got)
	}
	if got := b.Build(context.Background(), market(nil), "X"); len(got) != 0 {
		t.Errorf("got %q for nil contract, want no lines", got)
	}
}

func TestBuild_ShortenerFailureKeepsOriginalURL(t *testing.T) {
	sh := &fakeShortener{err: errors.New("connection refused")}
	b := NewBuilder(sh, IRC{}, nil)

	m := market(contract("Yes", "YES", "0.90"))
	got := b.Build(context.Background(), m, "YES")

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !strings.Contains(got[0], "https://www.predictit.org/Market/1") {
		t.Errorf("line %q does not contain the original URL", got[0])
	}
}

func TestBuild_HTMLEscapesNames(t *testing.T) {
	b := NewBuilder(nil, HTML{}, nil)

	m := market(
		contract("A & B", "AB.M", "0.10"),
		contract("<C>", "C.M", "0.20"),
	)
	m.Name = "Q&A"
	got := b.Build(context.Background(), m, "M")

	want := []string{
		"<b>Q&amp;A</b> | https://www.predictit.org/Market/1",
		"A &amp; B | Last Trade: $0.10 (---)",
		"&lt;C&gt;   | Last Trade: $0.20 (---)",
	}
	if !equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNamePaddingCountsRunes(t *testing.T) {
	got := namePadding([]*predictit.Contract{{Name: "Ångström"}, {Name: "abc"}})
	if got != 8 {
		t.Errorf("padding = %d, want 8", got)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
