// Package source abstracts where customer spreadsheets live. A
// reference is an opaque locator (for the file source, a path); the
// sync engine only ever sees rows of cells.
package source

import (
	"context"

	"github.com/rotisserie/eris"
)

// Categorized errors. Implementations wrap these so callers can render
// an actionable message: a bad reference is a data-entry problem on the
// customer record, unauthorized means credentials, not found means the
// sheet moved.
var (
	// ErrBadReference means the locator cannot possibly resolve
	// (malformed path, wrong file type).
	ErrBadReference = eris.New("bad sheet reference")

	// ErrUnauthorized means the source exists but refused access.
	ErrUnauthorized = eris.New("sheet access denied")

	// ErrNotFound means the locator is well-formed but nothing is there.
	ErrNotFound = eris.New("sheet not found")
)

// Source reads and writes spreadsheet rows.
type Source interface {
	// ReadRows returns every row of the referenced sheet, header
	// included, as string cells.
	ReadRows(ctx context.Context, ref string) ([][]string, error)

	// WriteRow overwrites one row, addressed by its 1-based sheet row
	// number.
	WriteRow(ctx context.Context, ref string, rowNum int, cells []string) error
}
