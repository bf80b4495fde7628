package utils

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ReadScriptLines returns the non empty lines of the file at fPath that are not comments.
// A comment line starts with '#'.
func ReadScriptLines(fPath string) ([]string, error) {
	if fPath == "" {
		return nil, errors.New("file path is missing")
	}
	f, err := os.Open(fPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening script %s", fPath)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading script %s", fPath)
	}
	return lines, nil
}
