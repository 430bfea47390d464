// Package csvio loads the CSV exports the report pipeline consumes.
// Accounting tools save these files in whatever encoding the host machine
// uses, so reading tries an ordered fallback list of encodings instead of
// assuming UTF-8.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile reads a CSV file, trying UTF-8, UTF-8 with signature,
// Windows-1252, and Latin-1 in that order. It returns the parsed rows and
// the name of the encoding that succeeded. Ragged rows are tolerated; the
// reshaper bounds-checks every cell access anyway.
func ReadFile(path string) ([][]string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return decodeAndParse(data, path)
}

// Read is ReadFile for an already-open source, used by tests and the upload
// path.
func Read(r io.Reader, name string) ([][]string, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", name, err)
	}
	return decodeAndParse(data, name)
}

func decodeAndParse(data []byte, name string) ([][]string, string, error) {
	var lastErr error
	for _, enc := range encodings() {
		text, err := enc.decode(data)
		if err != nil {
			lastErr = err
			continue
		}
		rows, err := parseCSV(text)
		if err != nil {
			lastErr = err
			continue
		}
		return rows, enc.name, nil
	}
	return nil, "", fmt.Errorf("decode %s: no encoding in fallback list succeeded: %w", name, lastErr)
}

type encodingAttempt struct {
	name   string
	decode func([]byte) ([]byte, error)
}

// encodings returns the bounded, ordered attempt list. This is a fallback
// chain, not a retry loop: each encoding is tried exactly once.
func encodings() []encodingAttempt {
	return []encodingAttempt{
		{
			name: "utf-8",
			decode: func(data []byte) ([]byte, error) {
				if bytes.HasPrefix(data, utf8BOM) || !utf8.Valid(data) {
					return nil, fmt.Errorf("not plain UTF-8")
				}
				return data, nil
			},
		},
		{
			name: "utf-8-sig",
			decode: func(data []byte) ([]byte, error) {
				if !bytes.HasPrefix(data, utf8BOM) {
					return nil, fmt.Errorf("no UTF-8 signature")
				}
				rest := data[len(utf8BOM):]
				if !utf8.Valid(rest) {
					return nil, fmt.Errorf("invalid UTF-8 after signature")
				}
				return rest, nil
			},
		},
		{
			name: "windows-1252",
			decode: func(data []byte) ([]byte, error) {
				// The charmap decoder silently substitutes bytes that
				// windows-1252 leaves undefined; reject them here so such
				// files fall through to latin-1, which does define them.
				for _, b := range data {
					switch b {
					case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
						return nil, fmt.Errorf("byte 0x%02X undefined in windows-1252", b)
					}
				}
				return charmap.Windows1252.NewDecoder().Bytes(data)
			},
		},
		{
			name: "latin-1",
			decode: func(data []byte) ([]byte, error) {
				return charmap.ISO8859_1.NewDecoder().Bytes(data)
			},
		},
	}
}

func parseCSV(text []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1 // exports have ragged rows
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}
