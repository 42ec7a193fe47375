package reply

import (
	"html"
	"strings"
)

type Color int

const (
	Green Color = iota
	Red
)

// Style applies chat markup. Text escapes plain content for the target
// markup; Bold and Color escape their argument themselves.
type Style interface {
	Bold(s string) string
	Color(s string, c Color) string
	Text(s string) string
}

// IRC renders mIRC control codes.
type IRC struct{}

var mircColors = map[Color]string{
	Green: "03",
	Red:   "04",
}

func (IRC) Bold(s string) string { return "\x02" + s + "\x02" }

func (IRC) Color(s string, c Color) string {
	return "\x03" + mircColors[c] + s + "\x03"
}

func (IRC) Text(s string) string { return s }

// HTML renders Telegram flavoured HTML. Telegram has no colour markup, so
// Color only escapes.
type HTML struct{}

func (HTML) Bold(s string) string { return "<b>" + html.EscapeString(s) + "</b>" }

func (HTML) Color(s string, _ Color) string { return html.EscapeString(s) }

func (HTML) Text(s string) string { return html.EscapeString(s) }

// Plain drops all markup.
type Plain struct{}

func (Plain) Bold(s string) string { return s }

func (Plain) Color(s string, _ Color) string { return s }

func (Plain) Text(s string) string { return s }

// StyleByName maps a config value to a Style. Unknown names yield Plain and
// false.
func StyleByName(name string) (Style, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "irc", "mirc":
		return IRC{}, true
	case "html", "telegram":
		return HTML{}, true
	case "plain", "":
		return Plain{}, true
	default:
		return Plain{}, false
	}
}
