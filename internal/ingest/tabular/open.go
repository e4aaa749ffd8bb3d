package tabular

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
)

// Open returns a reader for path, transparently gunzipping .gz files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, &ParseError{Name: filepath.Base(path), Err: err}
		}
		return &rc{Reader: gr, closers: []io.Closer{gr, f}}, nil
	}
	return f, nil
}

// OptionsFor picks the delimiter from the file name: tab for .tsv and .txt raw
// exports (which also get lazy quoting), comma otherwise.
func OptionsFor(path string) Options {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), ".gz"))
	opts := Options{Comma: ',', Name: filepath.Base(path)}
	switch filepath.Ext(name) {
	case ".tsv", ".txt":
		opts.Comma = '\t'
		opts.LazyQuotes = true
	}
	return opts
}

// ParseFile opens and parses a delimited file using OptionsFor(path).
func ParseFile(path string) (*Table, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	t, err := Parse(r, OptionsFor(path))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, err
		}
		// gzip corruption surfaces while reading
		if errors.Is(err, gzip.ErrChecksum) || errors.Is(err, gzip.ErrHeader) {
			return nil, &ParseError{Name: filepath.Base(path), Err: err}
		}
		return nil, err
	}
	return t, nil
}

type rc struct {
	io.Reader
	closers []io.Closer
}

func (r *rc) Close() error {
	var err error
	for i := range r.closers {
		if e := r.closers[i].Close(); err == nil && e != nil {
			err = e
		}
	}
	return err
}
