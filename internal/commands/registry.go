package commands

import "github.com/finitd/finitd/internal/config"

// BuiltIns returns fresh instances of the seven built-in commands, in the
// order commands.py's `commands` list enumerates them.
func BuiltIns() []Command {
	return []Command{
		Start{},
		Stop{},
		Kill{},
		Restart{},
		Status{},
		Debug{},
		Annotate{},
	}
}

// All returns the built-in commands plus one Arbitrary command per entry
// under commands.arbitrary.*, mirroring main.py's
// `cmds.append(commands.ArbitraryCommand(config, name))` loop.
func All(c *config.Config) []Command {
	cmds := BuiltIns()
	for _, name := range c.ArbitraryCommands() {
		cmds = append(cmds, NewArbitrary(name))
	}
	return cmds
}

// Lookup finds a command by name among cmds.
func Lookup(cmds []Command, name string) (Command, bool) {
	for _, cmd := range cmds {
		if cmd.Name() == name {
			return cmd, true
		}
	}
	return nil, false
}
