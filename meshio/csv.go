package meshio

import (
	"encoding/csv"
	"io"
	"strconv"

	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/errors"
)

// ReadCSV loads one row-major CSV field table into f, one row of f
// per CSV record. A Vector/Matrix field flattens across columns
// (row-major for Matrix); Bool columns accept "0"/"1". f's owning
// relation must already be sized to the file's row count — ReadCSV
// does not resize.
func ReadCSV(r io.Reader, f *liszt.Field) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	width := csvWidth(f.Type)
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.E("csv", errors.IO, err)
		}
		if len(rec) != width {
			return errors.E("csv", errors.IO, "row has "+strconv.Itoa(len(rec))+" columns, want "+strconv.Itoa(width))
		}
		if err := csvWriteRow(f, row, rec); err != nil {
			return err
		}
		row++
	}
	return nil
}

// WriteCSV dumps rows 0..n-1 of f as CSV (no live-mask check), one row per record,
// float columns formatted fixed-point ('f' verb) with prec digits
// after the decimal point; 0 selects the shortest representation
// that round-trips exactly.
func WriteCSV(w io.Writer, f *liszt.Field, n int, prec int) error {
	cw := csv.NewWriter(w)
	for i := 0; i < n; i++ {
		rec, err := csvReadRow(f, i, prec)
		if err != nil {
			return err
		}
		if err := cw.Write(rec); err != nil {
			return errors.E("csv", errors.IO, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.E("csv", errors.IO, err)
	}
	return nil
}

func csvWidth(t liszt.Type) int {
	switch t.Kind {
	case liszt.Vector:
		return t.Dims[0]
	case liszt.Matrix:
		return t.Dims[0] * t.Dims[1]
	default:
		return 1
	}
}

func csvWriteRow(f *liszt.Field, row int, rec []string) error {
	t := f.Type
	switch t.Kind {
	case liszt.Bool:
		v, err := strconv.ParseBool(normalizeBoolCell(rec[0]))
		if err != nil {
			return errors.E("csv", errors.IO, err)
		}
		f.SetBool(row, v)
	case liszt.Int32:
		v, err := strconv.ParseInt(rec[0], 10, 32)
		if err != nil {
			return errors.E("csv", errors.IO, err)
		}
		f.SetInt32(row, int32(v))
	case liszt.Uint64:
		v, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			return errors.E("csv", errors.IO, err)
		}
		f.SetUint64(row, v)
	case liszt.Float32:
		v, err := strconv.ParseFloat(rec[0], 32)
		if err != nil {
			return errors.E("csv", errors.IO, err)
		}
		f.SetFloat32(row, float32(v))
	case liszt.Float64:
		v, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return errors.E("csv", errors.IO, err)
		}
		f.SetFloat64(row, v)
	case liszt.Vector, liszt.Matrix:
		vals := make([]float64, len(rec))
		for i, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return errors.E("csv", errors.IO, err)
			}
			vals[i] = v
		}
		f.SetVector(row, vals)
	default:
		return errors.E("csv", errors.Schema, "unsupported field kind for csv: "+t.Kind.String())
	}
	return nil
}

func csvReadRow(f *liszt.Field, row int, prec int) ([]string, error) {
	t := f.Type
	switch t.Kind {
	case liszt.Bool:
		if f.GetBool(row) {
			return []string{"1"}, nil
		}
		return []string{"0"}, nil
	case liszt.Int32:
		return []string{strconv.FormatInt(int64(f.GetInt32(row)), 10)}, nil
	case liszt.Uint64:
		return []string{strconv.FormatUint(f.GetUint64(row), 10)}, nil
	case liszt.Float32:
		return []string{formatCSVFloat(float64(f.GetFloat32(row)), prec, 32)}, nil
	case liszt.Float64:
		return []string{formatCSVFloat(f.GetFloat64(row), prec, 64)}, nil
	case liszt.Vector, liszt.Matrix:
		vals := f.GetVector(row)
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = formatCSVFloat(v, prec, 64)
		}
		return rec, nil
	default:
		return nil, errors.E("csv", errors.Schema, "unsupported field kind for csv: "+t.Kind.String())
	}
}

// formatCSVFloat renders v fixed-point with prec digits after the
// decimal point; prec of 0 means "shortest round-tripping", per
// strconv's -1 sentinel, not literally zero fractional digits.
func formatCSVFloat(v float64, prec, bitSize int) string {
	if prec == 0 {
		return strconv.FormatFloat(v, 'f', -1, bitSize)
	}
	return strconv.FormatFloat(v, 'f', prec, bitSize)
}

func normalizeBoolCell(s string) string {
	switch s {
	case "0":
		return "false"
	case "1":
		return "true"
	default:
		return s
	}
}
