package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// readInputSource reads content from a file path or stdin when source is "-".
// The result is trimmed.
func readInputSource(source string, stdin io.Reader) (string, error) {
	data, err := readRaw(source, stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readRaw reads a file path or stdin ("-") without altering the content.
// A missing file yields InputNotFoundError with an absolute path.
func readRaw(source string, stdin io.Reader) ([]byte, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, fmt.Errorf("empty input source")
	}

	var r io.Reader
	if trimmed == "-" {
		if stdin != nil {
			r = stdin
		} else {
			r = os.Stdin
		}
	} else {
		file, err := os.Open(trimmed)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, InputNotFoundError{Path: absPath(trimmed)}
			}
			return nil, fmt.Errorf("failed to read %s: %w", trimmed, err)
		}
		defer file.Close()
		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
