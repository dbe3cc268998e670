package properties

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type decodeFunc func(data []byte, out *map[string]any) error

var decoders = map[string]decodeFunc{
	"json": decodeJSON,
	"yaml": func(data []byte, out *map[string]any) error { return yaml.Unmarshal(data, out) },
	"yml":  func(data []byte, out *map[string]any) error { return yaml.Unmarshal(data, out) },
}

// decodeJSON keeps numbers as json.Number so integers above 2^53 and
// fractional values reach the schema decoder unchanged.
func decodeJSON(data []byte, out *map[string]any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after the top-level value")
	}
	return nil
}

// SupportedExtensions returns the document extensions Parse understands.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Parse reads the document at path and returns its top-level mapping. The
// format is inferred from the file extension.
func Parse(path string) (map[string]any, error) {
	doc, _, err := read(path)
	return doc, err
}

func read(path string) (map[string]any, int, error) {
	if path == "" {
		return nil, 0, ErrPathEmpty
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	decode, ok := decoders[ext]
	if !ok {
		return nil, 0, UnsupportedFormatError{Path: path, Extension: ext}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "could not open properties document %s", path)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "could not read properties document %s", path)
	}

	doc := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, len(data), nil
	}

	if err := decode(data, &doc); err != nil {
		return nil, len(data), ParseError{Path: path, Format: ext, Cause: err}
	}

	// yaml "~" or "null" decodes into a nil map
	if doc == nil {
		doc = make(map[string]any)
	}

	return doc, len(data), nil
}
