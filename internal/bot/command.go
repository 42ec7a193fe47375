package bot

import (
	"strings"
)

// CommandName is the chat command this bot answers to.
const CommandName = "predictit"

const Usage = "predictit <ticker symbol>: Returns basic info on <ticker symbol>"

// Command is a parsed chat line addressed to the bot.
type Command struct {
	Name string
	Args []string
}

// ParseCommand recognises "predictit", "!predictit", "/predictit" and
// "/predictit@botname" followed by arguments. The second result is false for
// lines that are not addressed to the bot.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, false
	}

	name := strings.TrimLeft(fields[0], "!/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if !strings.EqualFold(name, CommandName) {
		return Command{}, false
	}

	return Command{Name: CommandName, Args: fields[1:]}, true
}

// Ticker returns the single ticker argument. Anything other than exactly one
// argument is a usage error.
func (c Command) Ticker() (string, bool) {
	if len(c.Args) != 1 {
		return "", false
	}
	return c.Args[0], true
}
