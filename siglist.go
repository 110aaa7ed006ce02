package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// readSiglist reads a newline-delimited list of signature file paths,
// skipping blank lines, matching the original CLI's own path-list reader.
func readSiglist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading siglist %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading siglist %s: %w", path, err)
	}
	return out, nil
}
