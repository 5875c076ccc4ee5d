package io

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chriscorrea/nodellm/internal/media"
)

// ReadPrompt consolidates prompt text from stdin, text files, and CLI arguments
// the order is: stdin, --file contents, then CLI args, separated by blank lines
func ReadPrompt(stdin *os.File, cliArgs []string, files []string) (string, error) {
	var parts []string

	// 1: read from stdin when it is a pipe or a redirected file
	if stdin != nil {
		piped, err := isPiped(stdin)
		if err != nil {
			return "", err
		}
		if piped {
			content, err := readTrimmed(stdin)
			if err != nil {
				return "", fmt.Errorf("failed to read from stdin: %w", err)
			}
			parts = appendNonEmpty(parts, content)
		}
	}

	// 2: read content from text files
	for _, filePath := range files {
		if filePath == "" {
			continue
		}
		f, err := os.Open(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read file %q: %w", filePath, err)
		}
		content, err := readTrimmed(f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read file %q: %w", filePath, err)
		}
		parts = appendNonEmpty(parts, content)
	}

	// 3: join CLI arguments with spaces
	parts = appendNonEmpty(parts, strings.TrimSpace(strings.Join(cliArgs, " ")))

	return strings.Join(parts, "\n\n"), nil
}

// ReadImages loads each image file as a single-image batch, in order
func ReadImages(paths []string) ([]media.Batch, error) {
	batches := make([]media.Batch, 0, len(paths))
	for _, path := range paths {
		img, err := media.LoadFile(path)
		if err != nil {
			return nil, err
		}
		batches = append(batches, media.Stack(img))
	}
	return batches, nil
}

func isPiped(f *os.File) (bool, error) {
	stat, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to stat stdin: %w", err)
	}
	return stat.Mode()&os.ModeCharDevice == 0, nil
}

// readTrimmed reads r fully and drops trailing whitespace
func readTrimmed(r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(content), "\r\n\t "), nil
}

func appendNonEmpty(parts []string, s string) []string {
	if s == "" {
		return parts
	}
	return append(parts, s)
}
