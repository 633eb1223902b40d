// Package seeds reads URL lists for the monitoring and refresh commands.
package seeds

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrEmptySeedFile = errors.New("seed file is empty")

// LoadURLs reads a CSV file and returns the non-empty values of the first
// column whose header is one of columns (matched case-insensitively).
func LoadURLs(filename string, columns ...string) ([]string, error) {
	if len(columns) == 0 {
		columns = []string{"URL", "Domain"}
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptySeedFile
	}

	idx := -1
	for i, col := range records[0] {
		for _, want := range columns {
			if strings.EqualFold(strings.TrimSpace(col), want) {
				idx = i
				break
			}
		}
		if idx != -1 {
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("failed to find any of %v in seed file header", columns)
	}

	var urls []string
	for _, row := range records[1:] {
		if len(row) > idx {
			if v := strings.TrimSpace(row[idx]); v != "" {
				urls = append(urls, v)
			}
		}
	}
	return urls, nil
}
