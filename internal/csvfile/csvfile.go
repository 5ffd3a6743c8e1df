//-------------------------------------------------------------------------
//
// salespipe - cafe sales data pipeline
//
// Copyright (c) 2025 - 2026, the salespipe authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package csvfile provides the row source and sink for delimited sales
// files. Rows are exposed as flat field-name to string-value mappings; the
// first non-empty line of a file defines the field names.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Record is one row keyed by header field name.
type Record map[string]string

// Reader yields Records from a CSV file in file order. A row whose field
// count does not match the header is silently dropped and counted.
type Reader struct {
	f       *os.File
	csv     *csv.Reader
	header  []string
	dropped int
}

// Open opens path and reads the header line.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // field-count mismatches are handled here, not by the parser

	header, err := readHeader(cr)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}

	return &Reader{f: f, csv: cr, header: header}, nil
}

// readHeader returns the first line with at least one non-empty field.
func readHeader(cr *csv.Reader) ([]string, error) {
	for {
		row, err := cr.Read()
		if err != nil {
			return nil, err
		}
		for _, field := range row {
			if field != "" {
				return row, nil
			}
		}
	}
}

// Header returns the field names in file order.
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next record, or io.EOF after the last row.
func (r *Reader) Next() (Record, error) {
	for {
		row, err := r.csv.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if len(row) != len(r.header) {
			r.dropped++
			continue
		}

		rec := make(Record, len(r.header))
		for i, name := range r.header {
			rec[name] = row[i]
		}
		return rec, nil
	}
}

// Dropped returns the number of rows discarded for field-count mismatch.
func (r *Reader) Dropped() int {
	return r.dropped
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ReadAll drains the reader into memory. The clean pipeline needs the whole
// file at once to compute column modes before rewriting rows.
func ReadAll(path string) ([]Record, []string, error) {
	r, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	var records []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	return records, r.header, nil
}

// Writer writes Records in a fixed column order.
type Writer struct {
	f      *os.File
	csv    *csv.Writer
	header []string
}

// Create opens path for writing and emits the header line.
func Create(path string, header []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return &Writer{f: f, csv: cw, header: header}, nil
}

// Write appends one record, taking values in header order. Missing fields
// are written empty.
func (w *Writer) Write(rec Record) error {
	row := make([]string, len(w.header))
	for i, name := range w.header {
		row[i] = rec[name]
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}

// Close flushes buffered rows and releases the underlying file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.f.Close()
		return fmt.Errorf("failed to flush: %w", err)
	}
	return w.f.Close()
}
