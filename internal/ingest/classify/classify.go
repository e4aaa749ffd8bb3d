package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"dashimport/internal/ingest/tabular"
)

// Source is one classified sheet: a delimited file, or a worksheet of a workbook.
type Source struct {
	Path  string
	Sheet string
}

// Label names the source in warnings.
func (s Source) Label() string {
	if s.Sheet != "" {
		return fmt.Sprintf("%s:%s", filepath.Base(s.Path), s.Sheet)
	}
	return filepath.Base(s.Path)
}

// Result of classifying one directory.
type Result struct {
	Sheets map[Kind]Source
	// Unmodelled holds sources that look like known sheets we have no model for.
	Unmodelled []Source
	// Duplicates holds sources that matched a kind already claimed.
	Duplicates []Source
	// Unreadable holds workbooks that could not be opened.
	Unreadable []Failure
}

// Failure pairs a source with the error that prevented reading it.
type Failure struct {
	Source Source
	Err    error
}

type compiled struct {
	kind Kind
	res  []*regexp.Regexp
}

// Classifier holds the compiled pattern table.
type Classifier struct {
	rules []compiled
}

// New compiles rules. Patterns are case-insensitive. Kinds missing from rules
// keep their defaults.
func New(rules []Rule) (*Classifier, error) {
	byKind := make(map[Kind][]string, len(Kinds))
	for _, r := range DefaultRules {
		byKind[r.Kind] = r.Patterns
	}
	for _, r := range rules {
		if !r.Kind.Valid() {
			return nil, errors.Errorf("unknown sheet kind %q", r.Kind)
		}
		if len(r.Patterns) > 0 {
			byKind[r.Kind] = r.Patterns
		}
	}

	c := &Classifier{rules: make([]compiled, 0, len(Kinds))}
	for _, k := range Kinds {
		cr := compiled{kind: k}
		for _, p := range byKind[k] {
			if !strings.HasPrefix(p, "(?i)") {
				p = "(?i)" + p
			}
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, errors.Wrapf(err, "compile %s pattern %q", k, p)
			}
			cr.res = append(cr.res, re)
		}
		c.rules = append(c.rules, cr)
	}
	return c, nil
}

// Default returns the built-in classifier.
func Default() *Classifier {
	c, err := New(nil)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile builds a classifier from a .yaml/.yml or .json rule file. An empty
// path means the defaults.
func LoadFile(path string) (*Classifier, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read patterns file")
	}
	var rules []Rule
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &rules)
	case ".json":
		err = sonic.Unmarshal(b, &rules)
	default:
		return nil, errors.New("unsupported patterns file format (use .json or .yaml/.yml)")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", filepath.Base(path))
	}
	if len(rules) == 0 {
		return nil, errors.New("no rules found in patterns file")
	}
	return New(rules)
}

// Match returns the first kind whose patterns match the sheet name.
func (c *Classifier) Match(name string) (Kind, bool) {
	n := NormalizeName(name)
	if n == "" {
		return "", false
	}
	for _, r := range c.rules {
		for _, re := range r.res {
			if re.MatchString(n) {
				return r.kind, true
			}
		}
	}
	return "", false
}

// Classify walks dir (not recursively). Delimited files are considered first
// in directory order, then workbook worksheets in tab order. The first source
// to match a kind keeps it.
func (c *Classifier) Classify(dir string) (Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, errors.Wrapf(err, "read bundle %s", dir)
	}

	var delimited, workbooks []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		switch {
		case IsDelimited(e.Name()):
			delimited = append(delimited, filepath.Join(dir, e.Name()))
		case strings.EqualFold(filepath.Ext(e.Name()), ".xlsx"):
			workbooks = append(workbooks, filepath.Join(dir, e.Name()))
		}
	}

	res := Result{Sheets: make(map[Kind]Source)}
	consider := func(src Source, name string) {
		kind, ok := c.Match(name)
		if !ok {
			if _, ok := Unmodelled(name); ok {
				res.Unmodelled = append(res.Unmodelled, src)
			}
			return
		}
		if _, taken := res.Sheets[kind]; taken {
			res.Duplicates = append(res.Duplicates, src)
			return
		}
		res.Sheets[kind] = src
	}

	for _, p := range delimited {
		consider(Source{Path: p}, filepath.Base(p))
	}
	for _, p := range workbooks {
		sheets, err := tabular.SheetNames(p)
		if err != nil {
			var pe *tabular.ParseError
			if errors.As(err, &pe) {
				res.Unreadable = append(res.Unreadable, Failure{Source: Source{Path: p}, Err: err})
				continue
			}
			return Result{}, err
		}
		for _, s := range sheets {
			consider(Source{Path: p, Sheet: s}, s)
		}
	}
	return res, nil
}

// IsDelimited reports whether name is a delimited export we read:
// .csv, .tsv, .txt, optionally gzipped.
func IsDelimited(name string) bool {
	n := strings.ToLower(strings.TrimSuffix(strings.ToLower(name), ".gz"))
	switch filepath.Ext(n) {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}

var (
	reOrdinal = regexp.MustCompile(`^\d+[\s._-]*`)
	reSep     = regexp.MustCompile(`[\s._-]+`)
)

// NormalizeName reduces a file or worksheet name to the form patterns match:
// extensions dropped, the "Workbook - " prefix of spreadsheet exports removed,
// leading ordinals removed, separators collapsed, lowercase.
func NormalizeName(name string) string {
	n := filepath.Base(name)
	lower := strings.ToLower(n)
	for _, ext := range []string{".gz", ".csv", ".tsv", ".txt", ".xlsx"} {
		if strings.HasSuffix(lower, ext) {
			n = n[:len(n)-len(ext)]
			lower = lower[:len(lower)-len(ext)]
		}
	}
	if i := strings.LastIndex(n, " - "); i >= 0 {
		n = n[i+3:]
	}
	n = reOrdinal.ReplaceAllString(strings.TrimSpace(n), "")
	n = reSep.ReplaceAllString(n, " ")
	return strings.ToLower(strings.TrimSpace(n))
}
