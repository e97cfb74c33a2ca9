// Copyright (c) 2025 Neomantra Corp
// Reader/Writer compression helpers.
//
// Archive (.dsb) compression uses zstd, same library and wrapper shape as
// the teacher's compressed_io.go (MakeCompressedWriter/MakeCompressedReader).
// In-place RT block (CmpV2) payloads use LZ4 instead: a block may still be
// read mid-session, so the in-place codec favors decode latency over ratio;
// see SPEC_FULL.md §B and DESIGN.md Open Question 1.

package wt

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

///////////////////////////////////////////////////////////////////////////////

// MakeCompressedWriter returns an io.Writer for filename, or os.Stdout if
// filename is "-". If the filename ends in ".zst"/".zstd", or useZstd is
// true, the writer zstd-compresses the output. Also returns a closer.
func MakeCompressedWriter(filename string, useZstd bool) (io.Writer, func(), error) {
	var writer io.Writer
	var closer io.Closer
	fileCloser := func() {
		if closer != nil {
			closer.Close()
		}
	}
	if filename != "-" {
		if file, err := os.Create(filename); err == nil {
			writer, closer = file, file
		} else {
			return nil, nil, err
		}
	} else {
		writer, closer = os.Stdout, nil
	}

	if useZstd || strings.HasSuffix(filename, ".zst") || strings.HasSuffix(filename, ".zstd") {
		zstdWriter, err := zstd.NewWriter(writer)
		if err != nil {
			fileCloser()
			return nil, nil, err
		}
		zstdCloser := func() {
			zstdWriter.Close()
			fileCloser()
		}
		return zstdWriter, zstdCloser, nil
	}
	return writer, fileCloser, nil
}

// MakeCompressedReader returns an io.Reader for filename, or os.Stdin if
// filename is "-". If the filename ends in ".zst"/".zstd", or useZstd is
// true, the reader zstd-decompresses the input. Also returns a closer.
func MakeCompressedReader(filename string, useZstd bool) (io.Reader, io.Closer, error) {
	var reader io.Reader
	var closer io.Closer

	if filename != "-" {
		if file, err := os.Open(filename); err == nil {
			reader, closer = file, file
		} else {
			return nil, nil, err
		}
	} else {
		reader, closer = os.Stdin, nil
	}

	var err error
	if useZstd || strings.HasSuffix(filename, ".zst") || strings.HasSuffix(filename, ".zstd") {
		reader, err = zstd.NewReader(reader)
	}
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, err
	}
	return reader, closer, nil
}

///////////////////////////////////////////////////////////////////////////////

// ZstdCompress compresses a raw record payload for archival (.dsb) storage.
func ZstdCompress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ZstdDecompress reverses ZstdCompress.
func ZstdDecompress(compressed []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Lz4Compress compresses an RT block's record payload in place (CmpV2).
func Lz4Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Lz4Decompress reverses Lz4Compress.
func Lz4Decompress(compressed []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(compressed))
	return io.ReadAll(r)
}
