package source

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlead/leadsync-cli/internal/resilience"
	"github.com/voltlead/leadsync-cli/internal/sheet"
)

func writeTestSheet(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, sheet.WriteXLSX(path, "Leads", rows))
	return path
}

func TestFileSourceReadRows(t *testing.T) {
	path := writeTestSheet(t, [][]string{
		{"naam", "email"},
		{"Jan de Vries", "jan@voorbeeld.nl"},
	})

	src := NewFileSource("")
	rows, err := src.ReadRows(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jan de Vries", rows[1][0])
}

func TestFileSourceBadReference(t *testing.T) {
	src := NewFileSource("")
	ctx := context.Background()

	_, err := src.ReadRows(ctx, "")
	assert.True(t, eris.Is(err, ErrBadReference))

	_, err = src.ReadRows(ctx, "/tmp/leads.csv")
	assert.True(t, eris.Is(err, ErrBadReference))
}

func TestFileSourceNotFound(t *testing.T) {
	src := NewFileSource("")

	_, err := src.ReadRows(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestFileSourceContextCancelled(t *testing.T) {
	path := writeTestSheet(t, [][]string{{"naam", "email"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSource("").ReadRows(ctx, path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFileSourceWriteRow(t *testing.T) {
	path := writeTestSheet(t, [][]string{
		{"naam", "email"},
		{"Jan de Vries", "jan@voorbeeld.nl"},
	})
	src := NewFileSource("")
	ctx := context.Background()

	err := src.WriteRow(ctx, path, 2, []string{"Jan de Vries", "jan.devries@voorbeeld.nl"})
	require.NoError(t, err)

	rows, err := src.ReadRows(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "jan.devries@voorbeeld.nl", rows[1][1])
	assert.Equal(t, "naam", rows[0][0])
}

func TestFileSourceWriteRowExtends(t *testing.T) {
	path := writeTestSheet(t, [][]string{{"naam", "email"}})
	src := NewFileSource("")
	ctx := context.Background()

	require.NoError(t, src.WriteRow(ctx, path, 4, []string{"Kees", "kees@voorbeeld.nl"}))

	rows, err := src.ReadRows(ctx, path)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Kees", rows[3][0])
}

func TestFileSourceWriteRowRejectsZero(t *testing.T) {
	path := writeTestSheet(t, [][]string{{"naam", "email"}})

	err := NewFileSource("").WriteRow(context.Background(), path, 0, []string{"x"})
	assert.True(t, eris.Is(err, ErrBadReference))
}

// flakySource fails a fixed number of times before delegating.
type flakySource struct {
	inner    Source
	failures int
	calls    int
}

func (f *flakySource) ReadRows(ctx context.Context, ref string) ([][]string, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, resilience.MarkTransient(errors.New("share hiccup"))
	}
	return f.inner.ReadRows(ctx, ref)
}

func (f *flakySource) WriteRow(ctx context.Context, ref string, rowNum int, cells []string) error {
	f.calls++
	if f.calls <= f.failures {
		return resilience.MarkTransient(errors.New("share hiccup"))
	}
	return f.inner.WriteRow(ctx, ref, rowNum, cells)
}

func TestRetryingRecoversFromTransientFailures(t *testing.T) {
	path := writeTestSheet(t, [][]string{{"naam", "email"}})
	flaky := &flakySource{inner: NewFileSource(""), failures: 2}

	cfg := resilience.DefaultRetryConfig()
	cfg.InitialBackoff = 1
	src := NewRetrying(flaky, cfg)

	rows, err := src.ReadRows(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetryingDoesNotRetryCategorizedErrors(t *testing.T) {
	flaky := &flakySource{inner: NewFileSource("")}
	src := NewRetrying(flaky, resilience.DefaultRetryConfig())

	_, err := src.ReadRows(context.Background(), "/tmp/leads.csv")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrBadReference))
	assert.Equal(t, 1, flaky.calls)
}

func TestRateLimitedPassesThrough(t *testing.T) {
	path := writeTestSheet(t, [][]string{{"naam", "email"}})
	src := NewRateLimited(NewFileSource(""), 100)

	rows, err := src.ReadRows(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRateLimitedZeroDisables(t *testing.T) {
	path := writeTestSheet(t, [][]string{{"naam", "email"}})
	src := NewRateLimited(NewFileSource(""), 0)

	rows, err := src.ReadRows(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
