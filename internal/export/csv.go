// Package export renders tabular report documents for download endpoints.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// utf8BOM lets spreadsheet applications detect the encoding of downloaded
// files; Excel in particular misreads unmarked UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV renders a header row plus data rows as a UTF-8 CSV document with a
// leading BOM. Fields containing commas, double quotes or newlines are
// wrapped in double quotes with embedded quotes doubled, per RFC 4180.
func CSV(header []string, rows [][]string) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	buf.Write(utf8BOM)

	writer := csv.NewWriter(buf)
	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return nil, fmt.Errorf("failed to write csv header: %w", err)
		}
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
