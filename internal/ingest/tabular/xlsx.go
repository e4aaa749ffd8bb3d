package tabular

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads every worksheet of an .xlsx file. Each table is named
// "<file>:<sheet>". A workbook excelize cannot open is a *ParseError.
func ParseWorkbook(path string) ([]*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{Name: filepath.Base(path), Err: err}
	}
	defer f.Close()

	var tables []*Table
	for _, sheet := range f.GetSheetList() {
		t, err := readSheet(f, filepath.Base(path), sheet)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ParseWorksheet reads a single worksheet by name.
func ParseWorksheet(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{Name: filepath.Base(path), Err: err}
	}
	defer f.Close()
	return readSheet(f, filepath.Base(path), sheet)
}

// SheetNames lists the worksheets of a workbook in tab order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{Name: filepath.Base(path), Err: err}
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func readSheet(f *excelize.File, file, sheet string) (*Table, error) {
	name := fmt.Sprintf("%s:%s", file, sheet)
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	t := &Table{Name: name}
	if len(all) == 0 {
		return t, nil
	}
	lines := make([]int, len(all)-1)
	for i := range lines {
		lines[i] = i + 2
	}
	t.Headers, t.Rows = build(all[0], all[1:], lines)
	return t, nil
}
