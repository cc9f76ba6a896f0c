// Package fileio reads MXLIFF documents into memory in coarse chunks so that
// large files can report progress and honor cancellation while loading.
package fileio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"mxliff-workbench/internal/progress"
)

// chunkSize is the read granularity; cancellation is checked between chunks.
const chunkSize = 1024 * 1024

// ReadDocument reads the file at path as UTF-8 text. Invalid byte sequences
// are replaced with the Unicode replacement character rather than failing.
// Progress is reported in the 0-50% range, leaving the upper half for the
// parse that typically follows.
func ReadDocument(ctx context.Context, path string, report progress.Func) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat document: %w", err)
	}
	size := info.Size()

	report.Report(0, "Reading file...")

	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	var read int64

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := f.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			read += int64(n)
			if size > 0 {
				pct := int(float64(read) / float64(size) * 50)
				report.Report(pct, fmt.Sprintf("Reading file... (%.1fMB / %.1fMB)",
					float64(read)/1024/1024, float64(size)/1024/1024))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
	}

	report.Report(50, "Decoding content...")

	content := buf.String()
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, string(utf8.RuneError))
	}

	return content, nil
}
