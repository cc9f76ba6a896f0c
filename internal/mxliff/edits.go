package mxliff

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadEdits reads a key-to-target edit set from a JSON object file or a
// two-column TSV file, chosen by extension.
func LoadEdits(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadEditsJSON(path)
	case ".tsv", ".txt":
		return loadEditsTSV(path)
	default:
		return nil, fmt.Errorf("unsupported edits format: %s", filepath.Ext(path))
	}
}

func loadEditsJSON(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edits file: %w", err)
	}

	edits := make(map[string]string)
	if err := json.Unmarshal(data, &edits); err != nil {
		return nil, fmt.Errorf("decode edits JSON: %w", err)
	}
	return edits, nil
}

func loadEditsTSV(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open edits file: %w", err)
	}
	defer f.Close()

	edits := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, found := strings.Cut(line, "\t")
		if !found || key == "" {
			continue
		}
		edits[key] = unescapeTSV(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan edits file: %w", err)
	}

	return edits, nil
}

// ApplyEdits sets the target text of every record whose key appears in the
// edit set. Returns the number of records touched. Original target snapshots
// are left alone so edit detection keeps working.
func ApplyEdits(records []Record, edits map[string]string) int {
	applied := 0
	for i := range records {
		if records[i].Key == "" {
			continue
		}
		if newText, ok := edits[records[i].Key]; ok {
			records[i].TargetText = newText
			applied++
		}
	}
	return applied
}
