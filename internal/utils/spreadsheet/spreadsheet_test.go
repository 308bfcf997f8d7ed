package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadRows_CSV(t *testing.T) {
	data := []byte("name,kind,currency\nAcme,CLIENT,USD\nGlobe Air,SUPPLIER,USD\n")
	rows, err := ReadRows("relations.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Acme", "CLIENT", "USD"}, rows[1])
}

func TestReadRows_CSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nAcme\n")...)
	rows, err := ReadRows("relations.csv", data)
	require.NoError(t, err)
	assert.Equal(t, "name", rows[0][0])
}

func TestReadRows_CSVLatin1(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("name\nCafé Voyages\n")
	require.NoError(t, err)

	rows, err := ReadRows("relations.csv", []byte(encoded))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Café Voyages", rows[1][0])
}

func TestReadRows_UnsupportedExtension(t *testing.T) {
	_, err := ReadRows("relations.pdf", []byte("x"))
	require.Error(t, err)
}

func TestWriteThenReadXLSX(t *testing.T) {
	data, err := Write("Relations", []string{"name", "balance"}, [][]any{
		{"Acme", "120.50"},
		{"Globe Air", "-40.00"},
	})
	require.NoError(t, err)

	rows, err := ReadRows("export.xlsx", data)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "balance"}, rows[0])
	assert.Equal(t, []string{"Globe Air", "-40.00"}, rows[2])
}

func TestHeaderIndexAndCell(t *testing.T) {
	idx := HeaderIndex([]string{" Name ", "Opening Balance"})
	row := []string{"Acme"}
	assert.Equal(t, "Acme", Cell(row, idx, "name"))
	assert.Equal(t, "", Cell(row, idx, "opening_balance"))
	assert.Equal(t, "", Cell(row, idx, "missing"))
}
