// Package linecount counts lines in text files. CountLines is the task
// function the coordinator hands to the worker pool.
package linecount

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Result is the outcome of counting one file.
type Result struct {
	Path  string
	Lines int

	// Err is set when the file could not be read; Lines is then 0.
	Err error
}

// Failed reports whether the file could not be read.
func (r Result) Failed() bool {
	return r.Err != nil
}

const chunkSize = 32 * 1024

// CountLines counts the lines of the file at path. It never fails: an
// unreadable file yields a zero count with Err set.
func CountLines(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	defer f.Close()

	n, err := Count(f)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return Result{Path: path, Lines: n}
}

// Count returns the number of lines in r. A final line without a trailing
// newline is counted; empty input has zero lines.
func Count(r io.Reader) (int, error) {
	buf := make([]byte, chunkSize)
	lines := 0
	read := false
	var last byte

	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
			read = true
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if read && last != '\n' {
		lines++
	}
	return lines, nil
}
