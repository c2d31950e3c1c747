package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/ontime-kpi/internal/table"
)

// Options tunes how input files are read.
type Options struct {
	// Sheet selects an xlsx worksheet by name; empty means the first sheet.
	Sheet string
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
}

// Reader defines a tabular file reader implementation.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*table.Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported input format")

// Load selects a reader based on the file name and returns the parsed table.
func Load(path string, opt Options) (*table.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open input: %s is a directory", path)
	}
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// Require checks that every named column exists in t.
func Require(t *table.Table, cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return fmt.Errorf("%s: %w: %s", t.Name(), table.ErrColumnNotFound, c)
		}
	}
	return nil
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
