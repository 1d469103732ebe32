package engine

import (
	"fmt"
	"os"
)

// outputFile is the handle a worker owns while streaming one job.
type outputFile struct {
	path    string
	file    *os.File
	written int64
}

// createOutput opens path fresh, truncating whatever a previous attempt left.
func createOutput(path string) (*outputFile, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open output file: %w", err)
	}
	return &outputFile{path: path, file: f}, nil
}

func (o *outputFile) Write(p []byte) (int, error) {
	n, err := o.file.Write(p)
	o.written += int64(n)
	return n, err
}

// Close flushes to disk and releases the handle. A partial file stays where
// it is.
func (o *outputFile) Close() error {
	if err := o.file.Sync(); err != nil {
		o.file.Close()
		return fmt.Errorf("failed to sync %s: %w", o.path, err)
	}
	return o.file.Close()
}
