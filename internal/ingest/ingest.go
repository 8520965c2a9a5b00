// Package ingest turns uploaded text files into batch input.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoText is returned when a file contains no usable lines.
var ErrNoText = errors.New("ingest: no valid text found in CSV")

// maxLine bounds a single line; longer reviews are rejected, not truncated.
const maxLine = 1 << 20

// ParseTexts reads one text per line. Blank lines are dropped and a first
// line mentioning "text" is treated as a header.
func ParseTexts(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var lines []string
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ingest: read lines: %w", err)
	}

	if len(lines) > 0 && strings.Contains(strings.ToLower(lines[0]), "text") {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return nil, ErrNoText
	}
	return lines, nil
}

// ParseFile opens path and parses it with ParseTexts.
func ParseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()
	return ParseTexts(f)
}
