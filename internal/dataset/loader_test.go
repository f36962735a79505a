package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook builds a one-sheet xlsx file for loader tests.
func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.xlsx")
	writeWorkbook(t, path, [][]any{
		{"sector", "stock_name", "price"},
		{"Tech", "A", 10},
		{"Tech", "B", 20},
	})

	loader := NewLoader(nil)
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"sector", "stock_name", "price"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Tech", table.Rows[0]["sector"].Display())

	price, ok := table.Rows[1]["price"].Number()
	require.True(t, ok)
	assert.Equal(t, 20.0, price)
}

func TestLoader_MemoizesByPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.xlsx")
	writeWorkbook(t, path, [][]any{
		{"sector"},
		{"Tech"},
	})

	loader := NewLoader(nil)
	first, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	// Deleting the file proves the second call never touches disk.
	require.NoError(t, os.Remove(path))

	second, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoader_MissingFileYieldsEmptyTable(t *testing.T) {
	loader := NewLoader(nil)
	path := filepath.Join(t.TempDir(), "nope.xlsx")
	table, err := loader.Load(context.Background(), path)

	require.Error(t, err)
	require.NotNil(t, table)
	assert.True(t, table.IsEmpty())
	assert.Empty(t, table.Columns)

	// The failure is memoized too.
	again, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.Same(t, table, again)
}

func TestLoader_ShortRowsPaddedWithNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.xlsx")
	writeWorkbook(t, path, [][]any{
		{"a", "b", "c"},
		{"x"},
	})

	loader := NewLoader(nil)
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 1, table.Len())
	assert.Equal(t, "x", table.Rows[0]["a"].Display())
	assert.True(t, table.Rows[0]["b"].IsNull())
	assert.True(t, table.Rows[0]["c"].IsNull())
}

func TestHeaderColumns(t *testing.T) {
	cols := headerColumns([]string{"a", "", "a", "b"})
	assert.Equal(t, []string{"a", "column_2", "a_2", "b"}, cols)
}
