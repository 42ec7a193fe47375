// Package price computes the change between two prediction market prices
// without losing precision.
package price

import (
	"github.com/shopspring/decimal"
)

type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

// Delta is a price change expressed in whole cents. Cents is never negative,
// the sign lives in Direction.
type Delta struct {
	Direction Direction
	Cents     int64
}

var hundred = decimal.NewFromInt(100)

// Change returns the movement from lastClose to lastTrade, rounded to two
// decimal places before it is converted to cents.
func Change(lastTrade, lastClose decimal.Decimal) Delta {
	d := lastTrade.Sub(lastClose).Round(2)

	switch d.Sign() {
	case 1:
		return Delta{Direction: Up, Cents: d.Mul(hundred).Floor().IntPart()}
	case -1:
		return Delta{Direction: Down, Cents: d.Neg().Mul(hundred).Floor().IntPart()}
	default:
		return Delta{Direction: Flat}
	}
}

// CloseOrTrade returns lastClose when it is set and lastTrade otherwise.
func CloseOrTrade(lastTrade decimal.Decimal, lastClose decimal.NullDecimal) decimal.Decimal {
	if lastClose.Valid {
		return lastClose.Decimal
	}
	return lastTrade
}
