package ingest

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// record is one parsed CSV row with its 1-based line number.
type record struct {
	line   int
	fields []string
}

// streamCSV reads r, which may start with a UTF-8 or UTF-16 byte order mark,
// and sends every data row after the header to the returned channel. The
// caller must drain the row channel; both channels close when reading ends.
func streamCSV(ctx context.Context, r io.Reader) (<-chan record, <-chan error) {
	rowCh := make(chan record, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
		reader := csv.NewReader(decoded)
		reader.FieldsPerRecord = -1 // column count is checked per row
		reader.LazyQuotes = true

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			fields, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if first {
				first = false
				continue
			}

			line, _ := reader.FieldPos(0)
			select {
			case rowCh <- record{line: line, fields: fields}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}
