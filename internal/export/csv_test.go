package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVStartsWithBOM(t *testing.T) {
	doc, err := CSV([]string{"name"}, [][]string{{"plain"}})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(doc, []byte{0xEF, 0xBB, 0xBF}))
}

func TestCSVQuotesCommaFields(t *testing.T) {
	doc, err := CSV([]string{"name", "email"}, [][]string{
		{"Nguyễn, Văn A", "an@example.com"},
	})
	require.NoError(t, err)
	require.Contains(t, string(doc), `"Nguyễn, Văn A"`)
}

func TestCSVDoublesEmbeddedQuotes(t *testing.T) {
	doc, err := CSV([]string{"name"}, [][]string{
		{`Trần "Bé" B`},
	})
	require.NoError(t, err)
	require.Contains(t, string(doc), `"Trần ""Bé"" B"`)
}

// Round-trip through a standard reader to prove the escaping is reversible.
func TestCSVRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Nguyễn, Văn A", "line1\nline2", `has "quotes"`},
		{"plain", "", "trailing "},
	}
	doc, err := CSV([]string{"a", "b", "c"}, rows)
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(doc, []byte{0xEF, 0xBB, 0xBF})))
	parsed, err := reader.ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, parsed[0])
	require.Equal(t, rows[0], parsed[1])
	require.Equal(t, rows[1], parsed[2])
}
