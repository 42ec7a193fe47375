package price

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestChange(t *testing.T) {
	tests := []struct {
		name      string
		lastTrade string
		lastClose string
		want      Delta
	}{
		{"equal", "0.55", "0.55", Delta{Flat, 0}},
		{"both zero", "0", "0", Delta{Flat, 0}},
		{"up one cent", "0.56", "0.55", Delta{Up, 1}},
		{"down one cent", "0.54", "0.55", Delta{Down, 1}},
		{"up many", "0.99", "0.01", Delta{Up, 98}},
		{"down many", "0.01", "0.99", Delta{Down, 98}},
		{"float artefact free", "0.30", "0.01", Delta{Up, 29}},
		{"rounds half up before cents", "0.555", "0.55", Delta{Up, 1}},
		{"rounds sub cent to flat", "0.551", "0.55", Delta{Flat, 0}},
		{"rounds sub cent down to flat", "0.549", "0.55", Delta{Flat, 0}},
		{"whole dollar", "1.00", "0.00", Delta{Up, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Change(decimal.RequireFromString(tt.lastTrade), decimal.RequireFromString(tt.lastClose))
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChange_CentsMatchFloorOfDifference(t *testing.T) {
	for a := int64(0); a <= 100; a += 7 {
		for b := int64(0); b <= 100; b += 3 {
			trade := decimal.New(a, -2)
			closing := decimal.New(b, -2)
			got := Change(trade, closing)

			switch {
			case a == b:
				if got.Direction != Flat || got.Cents != 0 {
					t.Errorf("%d vs %d: got %+v, want flat", a, b, got)
				}
			case a > b:
				if got.Direction != Up || got.Cents != a-b {
					t.Errorf("%d vs %d: got %+v, want up %d", a, b, got, a-b)
				}
			default:
				if got.Direction != Down || got.Cents != b-a {
					t.Errorf("%d vs %d: got %+v, want down %d", a, b, got, b-a)
				}
			}
		}
	}
}

func TestCloseOrTrade(t *testing.T) {
	trade := decimal.RequireFromString("0.42")

	got := CloseOrTrade(trade, decimal.NullDecimal{})
	if !got.Equal(trade) {
		t.Errorf("null close: got %s, want %s", got, trade)
	}

	closing := decimal.NewNullDecimal(decimal.RequireFromString("0.40"))
	got = CloseOrTrade(trade, closing)
	if !got.Equal(closing.Decimal) {
		t.Errorf("set close: got %s, want %s", got, closing.Decimal)
	}

	if Change(trade, CloseOrTrade(trade, decimal.NullDecimal{})) != Change(trade, trade) {
		t.Error("null close should yield the same delta as close == trade")
	}
}

func BenchmarkChange(b *testing.B) {
	trade := decimal.RequireFromString("0.57")
	closing := decimal.RequireFromString("0.49")

	for i := 0; i < b.N; i++ {
		_ = Change(trade, closing)
	}
}
