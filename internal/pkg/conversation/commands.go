package conversation

import "strings"

// Command is an explicit user command, independent of how the transport
// spells it.
type Command int

const (
	CommandStart   Command = iota + 1 // begin setup
	CommandSetLink                    // change affiliate link
	CommandBet                        // request a bet link
	CommandMe                         // show saved affiliate data
	CommandReset
	CommandHelp
)

// CommandInfo describes a command for menus and help text.
type CommandInfo struct {
	Command     Command
	Name        string
	Description string
}

var commands = []CommandInfo{
	{CommandStart, "start", "configurar link"},
	{CommandSetLink, "setlink", "trocar link de afiliado"},
	{CommandBet, "bilhete", "gerar link do bilhete"},
	{CommandMe, "me", "ver cadastro"},
	{CommandReset, "reset", "apagar cadastro"},
	{CommandHelp, "help", "ajuda"},
}

// Commands lists every command in menu order.
func Commands() []CommandInfo {
	out := make([]CommandInfo, len(commands))
	copy(out, commands)
	return out
}

// Name is the command's Telegram name without the slash.
func (c Command) Name() string {
	for _, info := range commands {
		if info.Command == c {
			return info.Name
		}
	}
	return "unknown"
}

func (c Command) String() string {
	return c.Name()
}

// ParseCommand maps "/start", "start", "/Start@SomeBot arg" and the like to a
// Command.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, false
	}
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	for _, info := range commands {
		if info.Name == name {
			return info.Command, true
		}
	}
	return 0, false
}
