package csvw

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

const crlf = "\r\n"

// WriteCSV creates or truncates path and writes the optional header row
// followed by rows. Fields are quoted the encoding/csv way and every record,
// the header included, ends in CRLF. A nil headers slice writes no header.
func WriteCSV(path string, rows [][]string, headers []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}

	if err := writeRecords(f, rows, headers); err != nil {
		f.Close()
		return fmt.Errorf("writing csv file %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing csv file %s: %w", path, err)
	}
	return nil
}

func writeRecords(w io.Writer, rows [][]string, headers []string) error {
	out := bufio.NewWriter(w)

	// Each record is encoded on its own so the writer's "\n" terminator can be
	// swapped for CRLF without touching line breaks inside quoted fields.
	var line bytes.Buffer
	enc := csv.NewWriter(&line)

	write := func(record []string) error {
		line.Reset()
		if err := enc.Write(record); err != nil {
			return err
		}
		enc.Flush()
		if err := enc.Error(); err != nil {
			return err
		}
		if _, err := out.Write(bytes.TrimSuffix(line.Bytes(), []byte("\n"))); err != nil {
			return err
		}
		_, err := out.WriteString(crlf)
		return err
	}

	if headers != nil {
		if err := write(headers); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, row := range rows {
		if err := write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	return out.Flush()
}
