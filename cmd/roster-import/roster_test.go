package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeRoster(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

// memRegistrar mirrors StudentRepository.Register on a map.
type memRegistrar struct {
	names map[string]string
	err   error
}

func (m *memRegistrar) Register(_ context.Context, code, name string, overwrite bool) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.names[code]; ok {
		if overwrite {
			m.names[code] = name
		}
		return false, nil
	}
	m.names[code] = name
	return true, nil
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    record
		ok      bool
		wantErr bool
	}{
		{line: "20230001,Mona Hassan", want: record{code: "20230001", name: "Mona Hassan"}, ok: true},
		{line: "  20230002 , Omar, Jr. ", want: record{code: "20230002", name: "Omar, Jr."}, ok: true},
		{line: ""},
		{line: "# header"},
		{line: "20230003", wantErr: true},
		{line: "20230003,", wantErr: true},
		{line: ",Nameless", wantErr: true},
		{line: strings.Repeat("9", maxCodeLen+1) + ",Long", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rec, ok, err := parseLine(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, rec)
		})
	}
}

func TestImport_EarlierFileWins(t *testing.T) {
	ctx := context.Background()
	lg := zap.NewNop()
	dir := t.TempDir()
	files := []string{
		writeRoster(t, dir, "roster1.gz", "# code,name", "A1,Alice", "B1,Bob"),
		writeRoster(t, dir, "roster2.gz", "B1,Robert", "C1,Carol", "broken-line"),
		writeRoster(t, dir, "roster3.gz", "A1,Alicia", "D1,Dan"),
	}

	filters, err := buildFilters(ctx, lg, files, 1000)
	require.NoError(t, err)
	require.Len(t, filters, 3)
	assert.True(t, filters[0].TestString("A1"))
	assert.True(t, filters[1].TestString("C1"))

	reg := &memRegistrar{names: map[string]string{}}
	stats, err := importFiles(ctx, lg, reg, files, filters)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"A1": "Alice",
		"B1": "Bob",
		"C1": "Carol",
		"D1": "Dan",
	}, reg.names)
	assert.Equal(t, importStats{created: 4, existing: 2, skipped: 1}, stats)
}

func TestImport_RenamesExistingStudent(t *testing.T) {
	ctx := context.Background()
	lg := zap.NewNop()
	files := []string{writeRoster(t, t.TempDir(), "roster1.gz", "A1,Alice Updated")}

	filters, err := buildFilters(ctx, lg, files, 1000)
	require.NoError(t, err)

	reg := &memRegistrar{names: map[string]string{"A1": "Alice"}}
	_, err = importFiles(ctx, lg, reg, files, filters)
	require.NoError(t, err)
	assert.Equal(t, "Alice Updated", reg.names["A1"])
}

func TestImport_Errors(t *testing.T) {
	ctx := context.Background()
	lg := zap.NewNop()
	dir := t.TempDir()

	t.Run("MissingFile", func(t *testing.T) {
		_, err := buildFilters(ctx, lg, []string{filepath.Join(dir, "nope.gz")}, 10)
		require.Error(t, err)
	})
	t.Run("NotGzip", func(t *testing.T) {
		path := filepath.Join(dir, "plain.gz")
		require.NoError(t, os.WriteFile(path, []byte("A1,Alice\n"), 0o600))
		_, err := buildFilters(ctx, lg, []string{path}, 10)
		require.Error(t, err)
	})
	t.Run("Registrar", func(t *testing.T) {
		files := []string{writeRoster(t, dir, "roster.gz", "A1,Alice")}
		filters, err := buildFilters(ctx, lg, files, 10)
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = importFiles(ctx, lg, &memRegistrar{err: boom}, files, filters)
		require.ErrorIs(t, err, boom)
	})
}
