package lookup_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"insteon-alert/internal/infra/lookup"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestRegistry_FindAddressByName(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	primary := writeFile(t, dir, "app.csv", "name,address,room\nKitchen Light,11:22:33,kitchen\nGarage Door,44.55.66,garage\n")
	fallback := writeFile(t, dir, "system.csv", "address,name\naa-bb-cc,Porch\n11:11:11,Kitchen Light\n")
	missing := filepath.Join(dir, "missing.csv")

	registry := lookup.NewRegistry([]string{missing, primary, fallback}, logger)

	tests := []struct {
		name      string
		input     string
		want      string
		wantFound bool
	}{
		{name: "primary file", input: "Kitchen Light", want: "11:22:33", wantFound: true},
		{name: "case insensitive", input: "  garage door ", want: "44.55.66", wantFound: true},
		{name: "fallback file", input: "porch", want: "aa-bb-cc", wantFound: true},
		{name: "unknown", input: "Attic", wantFound: false},
		{name: "empty", input: "", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := registry.FindAddressByName(tt.input)
			if found != tt.wantFound {
				t.Fatalf("found: got %v, want %v", found, tt.wantFound)
			}
			if got != tt.want {
				t.Errorf("address: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistry_SkipsMalformedFile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	bad := writeFile(t, dir, "bad.csv", "device,id\nPorch,aabbcc\n")
	good := writeFile(t, dir, "good.csv", "name,address\nPorch,010203\n")

	registry := lookup.NewRegistry([]string{bad, good}, logger)

	got, found := registry.FindAddressByName("Porch")
	if !found {
		t.Fatal("expected Porch to be found in the second file")
	}
	if got != "010203" {
		t.Errorf("address: got %q, want 010203", got)
	}
}

func TestRegistry_HeaderWithByteOrderMark(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := writeFile(t, t.TempDir(), "export.csv", "\ufeffname,address\nFront Door,0a:0b:0c\n")

	registry := lookup.NewRegistry([]string{path}, logger)

	got, found := registry.FindAddressByName("front door")
	if !found {
		t.Fatal("expected Front Door to be found despite the byte order mark")
	}
	if got != "0a:0b:0c" {
		t.Errorf("address: got %q, want 0a:0b:0c", got)
	}
}
