package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownCommand = errors.New("command not recognized")

// CommandSpec is one entry of the command catalog. Times is how many calls
// are sent to each device and is never below 1.
type CommandSpec struct {
	Name             string
	Cmd1             byte
	Cmd2             byte
	ResponseExpected bool
	Times            uint
}

func (c CommandSpec) String() string {
	return fmt.Sprintf("%s (%02X %02X x%d)", c.Name, c.Cmd1, c.Cmd2, c.Times)
}

// Standard direct command opcodes.
const (
	Cmd1IDRequest   byte = 0x10
	Cmd1On          byte = 0x11
	Cmd1FastOn      byte = 0x12
	Cmd1Off         byte = 0x13
	Cmd1FastOff     byte = 0x14
	Cmd1Brighten    byte = 0x15
	Cmd1Dim         byte = 0x16
	Cmd1Status      byte = 0x19
	Cmd1Ping        byte = 0x0F
	Cmd1Beep        byte = 0x30
	Cmd1IMeterReset byte = 0x80
	Cmd1IMeterQuery byte = 0x82
)

var commands map[string]CommandSpec

func init() {
	table := []CommandSpec{
		{Name: "on", Cmd1: Cmd1On, Cmd2: 0xFF},
		{Name: "fast_on", Cmd1: Cmd1FastOn, Cmd2: 0xFF},
		{Name: "off", Cmd1: Cmd1Off, Cmd2: 0x00},
		{Name: "fast_off", Cmd1: Cmd1FastOff, Cmd2: 0x00},
		{Name: "brighten", Cmd1: Cmd1Brighten, Cmd2: 0x00},
		{Name: "dim", Cmd1: Cmd1Dim, Cmd2: 0x00},
		{Name: "status", Cmd1: Cmd1Status, Cmd2: 0x00, ResponseExpected: true},
		{Name: "id_request", Cmd1: Cmd1IDRequest, Cmd2: 0x00},
		{Name: "ping", Cmd1: Cmd1Ping, Cmd2: 0x00, ResponseExpected: true},
		{Name: "beep", Cmd1: Cmd1Beep, Cmd2: 0x00},
		{Name: "beep_two_times", Cmd1: Cmd1Beep, Cmd2: 0x00, Times: 2},
		{Name: "beep_three_times", Cmd1: Cmd1Beep, Cmd2: 0x00, Times: 3},
		{Name: "beep_four_times", Cmd1: Cmd1Beep, Cmd2: 0x00, Times: 4},
		{Name: "beep_five_times", Cmd1: Cmd1Beep, Cmd2: 0x00, Times: 5},
		{Name: "beep_ten_times", Cmd1: Cmd1Beep, Cmd2: 0x00, Times: 10},
		{Name: "imeter_status", Cmd1: Cmd1IMeterQuery, Cmd2: 0x00, ResponseExpected: true},
		{Name: "imeter_reset", Cmd1: Cmd1IMeterReset, Cmd2: 0x00},
	}

	commands = make(map[string]CommandSpec, len(table))
	for _, c := range table {
		if c.Times == 0 {
			c.Times = 1
		}
		commands[c.Name] = c
	}
}

// LookupCommand resolves a symbolic command name, ignoring case and
// surrounding whitespace.
func LookupCommand(name string) (CommandSpec, error) {
	c, ok := commands[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return CommandSpec{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return c, nil
}

// Commands returns the whole catalog sorted by name.
func Commands() []CommandSpec {
	result := make([]CommandSpec, 0, len(commands))
	for _, c := range commands {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
