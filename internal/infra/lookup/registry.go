package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// Registry resolves human-friendly device names to hex addresses using CSV
// lookup files with at least a "name" and an "address" column. Files are
// searched in order and read on every lookup.
type Registry struct {
	paths  []string
	logger *slog.Logger
}

func NewRegistry(paths []string, logger *slog.Logger) *Registry {
	return &Registry{
		paths:  paths,
		logger: logger,
	}
}

// FindAddressByName returns the address column of the first row whose name
// matches, ignoring case and surrounding whitespace.
func (r *Registry) FindAddressByName(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", false
	}

	for _, path := range r.paths {
		address, found, err := findInFile(path, key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				r.logger.Debug("lookup file not found", "path", path)
			} else {
				r.logger.Warn("skipping lookup file", "path", path, "error", err)
			}
			continue
		}
		if found {
			r.logger.Debug("resolved device name", "name", name, "address", address, "path", path)
			return address, true
		}
	}

	return "", false
}

func findInFile(path, key string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return "", false, fmt.Errorf("reading header: %w", err)
	}
	// Spreadsheet exports often start with a UTF-8 byte order mark.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	nameCol, addressCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameCol = i
		case "address":
			addressCol = i
		}
	}
	if nameCol < 0 || addressCol < 0 {
		return "", false, fmt.Errorf("header must contain name and address columns")
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("reading record: %w", err)
		}
		if nameCol >= len(record) || addressCol >= len(record) {
			continue
		}
		if strings.ToLower(strings.TrimSpace(record[nameCol])) == key {
			return strings.TrimSpace(record[addressCol]), true, nil
		}
	}
}
