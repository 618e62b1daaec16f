package domain_test

import (
	"errors"
	"sort"
	"testing"

	"insteon-alert/internal/domain"
)

func TestLookupCommand_CaseAndWhitespace(t *testing.T) {
	want, err := domain.LookupCommand("on")
	if err != nil {
		t.Fatalf("LookupCommand(on) error: %v", err)
	}

	for _, name := range []string{"ON", " on ", "On\t"} {
		got, err := domain.LookupCommand(name)
		if err != nil {
			t.Fatalf("LookupCommand(%q) error: %v", name, err)
		}
		if got != want {
			t.Errorf("LookupCommand(%q): got %+v, want %+v", name, got, want)
		}
	}

	if want.Cmd1 != 0x11 || want.Cmd2 != 0xFF || want.Times != 1 {
		t.Errorf("on: got %s", want)
	}
}

func TestLookupCommand_Unknown(t *testing.T) {
	_, err := domain.LookupCommand("not_a_command")
	if !errors.Is(err, domain.ErrUnknownCommand) {
		t.Errorf("got %v, want ErrUnknownCommand", err)
	}
}

func TestLookupCommand_Beeps(t *testing.T) {
	tests := map[string]uint{
		"beep":             1,
		"beep_two_times":   2,
		"beep_three_times": 3,
		"beep_four_times":  4,
		"beep_five_times":  5,
		"beep_ten_times":   10,
	}

	for name, times := range tests {
		c, err := domain.LookupCommand(name)
		if err != nil {
			t.Fatalf("LookupCommand(%q) error: %v", name, err)
		}
		if c.Times != times {
			t.Errorf("%s times: got %d, want %d", name, c.Times, times)
		}
		if c.Cmd1 != domain.Cmd1Beep {
			t.Errorf("%s cmd1: got %02X, want 30", name, c.Cmd1)
		}
	}
}

func TestCommands(t *testing.T) {
	all := domain.Commands()

	if !sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Name < all[j].Name }) {
		t.Error("catalog is not sorted by name")
	}

	required := []string{"on", "fast_on", "off", "fast_off", "status", "imeter_status", "imeter_reset", "ping"}
	seen := make(map[string]bool, len(all))
	for _, c := range all {
		seen[c.Name] = true
		if c.Times < 1 {
			t.Errorf("%s has times %d", c.Name, c.Times)
		}
	}
	for _, name := range required {
		if !seen[name] {
			t.Errorf("missing command %s", name)
		}
	}
}
