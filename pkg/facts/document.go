package facts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	ErrFileNotFound        = errors.New("file not found")
	ErrInvalidJSON         = errors.New("invalid JSON file")
	ErrRootNotObject       = errors.New("root element is not an object")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrUnexpectedStructure = errors.New("category has unexpected structure")
	ErrNotList             = errors.New("category data is not a list")
	ErrNoItems             = errors.New("no items to export")
)

// DataKey is the field every well-formed category result carries its items under.
const DataKey = "data"

// Document is a loaded facts file. Categories is nil when the JSON root is
// not an object; the raw root is still kept so validation can report it.
type Document struct {
	Path       string
	Size       int64
	Root       any
	Categories map[string]any
}

// Load reads and parses a facts file from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	doc.Path = path
	doc.Size = int64(len(data))
	return doc, nil
}

// Parse decodes a facts document. Numbers are kept as json.Number so
// values round-trip exactly through extract and filter. Input that is not
// valid UTF-8 is rejected rather than having bytes replaced.
func Parse(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidJSON
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, ErrInvalidJSON
	}
	// Trailing garbage after the first value is also invalid.
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrInvalidJSON
	}

	doc := &Document{Root: root}
	if obj, ok := root.(map[string]any); ok {
		doc.Categories = obj
	}
	return doc, nil
}

// IsObject reports whether the document root is a JSON object.
func (d *Document) IsObject() bool {
	return d.Categories != nil
}

// Names returns the category names in sorted order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Categories))
	for name := range d.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Category returns the raw value stored under name.
func (d *Document) Category(name string) (any, error) {
	if !d.IsObject() {
		return nil, ErrRootNotObject
	}
	value, ok := d.Categories[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' (available categories: %s)",
			ErrCategoryNotFound, name, strings.Join(d.Names(), ", "))
	}
	return value, nil
}

// items returns the data list of a list-shaped category.
func (d *Document) items(name string) ([]any, error) {
	value, err := d.Category(name)
	if err != nil {
		return nil, err
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnexpectedStructure, name)
	}
	data, ok := obj[DataKey]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnexpectedStructure, name)
	}
	list, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNotList, name)
	}
	return list, nil
}

// writeJSON writes v as two-space indented JSON followed by a newline.
func writeJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	})
}

// writeFile creates path and fills it with write. On failure the partial
// file is removed.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
