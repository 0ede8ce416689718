package backup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/conorfennell/habittracker/internal/domain"
)

var header = func() []string {
	h := []string{"week", "date_str"}
	for _, habit := range domain.Habits {
		h = append(h, habit.Column())
	}
	return h
}()

// WriteCSV writes records as CSV with a header row, one line per record.
func WriteCSV(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		line := make([]string, 0, len(header))
		line = append(line, strconv.Itoa(r.Week), r.Date)
		for _, s := range r.Checks {
			line = append(line, s.String())
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a CSV export produced by WriteCSV. Every week and habit value is
// validated; the first bad line aborts the read.
func ReadCSV(r io.Reader) ([]domain.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.Join(first, ",") != strings.Join(header, ",") {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(first, ","))
	}

	var records []domain.Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		week, err := domain.ParseWeek(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := domain.Record{Week: week, Date: fields[1]}
		for i, h := range domain.Habits {
			s, err := domain.ParseStatus(fields[2+i])
			if err != nil {
				return nil, fmt.Errorf("line %d, %s: %w", line, h, err)
			}
			rec.Checks[h] = s
		}
		records = append(records, rec)
	}
	return records, nil
}
