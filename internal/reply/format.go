package reply

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/daszybak/predictit_bot/internal/predictit"
	"github.com/daszybak/predictit_bot/internal/price"
)

// NoChange is shown when the last trade equals the last close.
const NoChange = "---"

// FormatDelta renders the change from lastClose to lastTrade, e.g. "↑7¢"
// in green or "↓3¢" in red.
func FormatDelta(style Style, lastTrade, lastClose decimal.Decimal) string {
	d := price.Change(lastTrade, lastClose)
	switch d.Direction {
	case price.Up:
		return style.Color(fmt.Sprintf("↑%d¢", d.Cents), Green)
	case price.Down:
		return style.Color(fmt.Sprintf("↓%d¢", d.Cents), Red)
	default:
		return NoChange
	}
}

func FormatTrade(lastTrade decimal.Decimal) string {
	return "Last Trade: $" + lastTrade.StringFixed(2)
}

// FormatContract returns the raw contract name, its trade string and its
// rendered delta. A missing close price counts as no change.
func FormatContract(style Style, c *predictit.Contract) (name, trade, delta string) {
	closePrice := price.CloseOrTrade(c.LastTradePrice, c.LastClosePrice)
	return c.Name, FormatTrade(c.LastTradePrice), FormatDelta(style, c.LastTradePrice, closePrice)
}
