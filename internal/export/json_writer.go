// Copyright (c) 2024 Neomantra Corp
//
// JSON export for our own archive formats, adapted from the teacher's
// internal/file/json_writer.go. WriteAsJson itself has no Databento
// dependency and carries over unmodified; the scanner-visitor plumbing is
// replaced with a direct slice walk over the archive reader's output.

package export

import (
	"encoding/json"
	"fmt"
	"io"

	"wondertrader/store"
)

// WriteBarArchiveAsJson reads a bar (.dsb) archive and writes one JSON
// object per line to writer.
func WriteBarArchiveAsJson(sourceFile string, writer io.Writer) error {
	bars, err := store.ReadBarArchive(sourceFile)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	for i := range bars {
		if err := WriteAsJson(&bars[i], writer); err != nil {
			return fmt.Errorf("json write failed: %w", err)
		}
	}
	return nil
}

// WriteTickArchiveAsJson reads a tick (.dsb) archive and writes one JSON
// object per line to writer.
func WriteTickArchiveAsJson(sourceFile string, writer io.Writer) error {
	ticks, err := store.ReadTickArchive(sourceFile)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	for i := range ticks {
		if err := WriteAsJson(&ticks[i], writer); err != nil {
			return fmt.Errorf("json write failed: %w", err)
		}
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// WriteAsJson writes a value marshalled as JSON to the writer, returning any error.
func WriteAsJson[T any](val *T, writer io.Writer) error {
	jstr, err := json.Marshal(val)
	if err != nil {
		return err
	}
	_, err = writer.Write(jstr)
	if err != nil {
		return err
	}
	_, err = writer.Write([]byte{'\n'})
	return err
}
