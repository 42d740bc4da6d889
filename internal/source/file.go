package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/voltlead/leadsync-cli/internal/sheet"
)

// FileSource serves sheets from XLSX files on disk (or a mounted
// share). The reference is the file path.
type FileSource struct {
	sheetName string
}

// NewFileSource returns a FileSource reading the named worksheet, or
// the first worksheet when name is empty.
func NewFileSource(sheetName string) *FileSource {
	return &FileSource{sheetName: sheetName}
}

func (s *FileSource) ReadRows(ctx context.Context, ref string) ([][]string, error) {
	if err := s.check(ctx, ref); err != nil {
		return nil, err
	}

	rows, err := sheet.ReadXLSX(ref, sheet.XLSXOptions{SheetName: s.sheetName})
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", ref)
	}
	return rows, nil
}

func (s *FileSource) WriteRow(ctx context.Context, ref string, rowNum int, cells []string) error {
	if err := s.check(ctx, ref); err != nil {
		return err
	}
	if rowNum < 1 {
		return eris.Wrapf(ErrBadReference, "row number %d", rowNum)
	}

	rows, err := sheet.ReadXLSX(ref, sheet.XLSXOptions{SheetName: s.sheetName})
	if err != nil {
		return eris.Wrapf(err, "source: read %s before write", ref)
	}
	for len(rows) < rowNum {
		rows = append(rows, nil)
	}
	rows[rowNum-1] = cells

	name := s.sheetName
	if name == "" {
		name = "Leads"
	}
	if err := sheet.WriteXLSX(ref, name, rows); err != nil {
		return eris.Wrapf(err, "source: write %s", ref)
	}
	return nil
}

// check validates the reference and maps filesystem failures onto the
// categorized errors.
func (s *FileSource) check(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "source: context done")
	}
	if ref == "" {
		return eris.Wrap(ErrBadReference, "empty reference")
	}
	ext := strings.ToLower(filepath.Ext(ref))
	if ext != ".xlsx" && ext != ".xlsm" {
		return eris.Wrapf(ErrBadReference, "unsupported file type %q", ext)
	}

	if _, err := os.Stat(ref); err != nil {
		switch {
		case os.IsNotExist(err):
			return eris.Wrapf(ErrNotFound, "%s", ref)
		case os.IsPermission(err):
			return eris.Wrapf(ErrUnauthorized, "%s", ref)
		default:
			return eris.Wrapf(err, "source: stat %s", ref)
		}
	}
	return nil
}
