package local

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// ReadCSV builds a table from CSV data. The first record is the header;
// every other field must parse as a float.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read csv")
	}

	if len(records) == 0 {
		return nil, errors.New("csv has no header")
	}

	header := records[0]
	data := make([][]float64, len(header))

	for c := range data {
		data[c] = make([]float64, 0, len(records)-1)
	}

	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, errors.Errorf("row %d has %d fields, want %d", i+1, len(record), len(header))
		}

		for c, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %s", i+1, header[c])
			}

			data[c] = append(data[c], v)
		}
	}

	return NewTable(header, data)
}

// WriteCSV writes a table as CSV, header first.
func WriteCSV(w io.Writer, tbl *Table) error {
	out := csv.NewWriter(w)

	err := out.Write(tbl.columns)
	if err != nil {
		return errors.Wrap(err, "unable to write csv header")
	}

	record := make([]string, len(tbl.columns))

	for row := 0; row < tbl.rows; row++ {
		for col := range tbl.columns {
			record[col] = strconv.FormatFloat(tbl.data[col][row], 'g', -1, 64)
		}

		err = out.Write(record)
		if err != nil {
			return errors.Wrapf(err, "unable to write csv row %d", row)
		}
	}

	out.Flush()

	return errors.Wrap(out.Error(), "unable to flush csv")
}
