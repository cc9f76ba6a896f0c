package tablematch

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadTables reads document tables from a JSON file produced by the external
// document-table extractor. Accepts either a bare array of tables or an
// object with a "tables" field.
func LoadTables(path string) ([]Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables file: %w", err)
	}

	var tables []Table
	if err := json.Unmarshal(data, &tables); err == nil {
		return tables, nil
	}

	var wrapped struct {
		Tables []Table `json:"tables"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode tables JSON: %w", err)
	}
	return wrapped.Tables, nil
}

// WriteResult saves a match result as indented JSON.
func WriteResult(result Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encode result JSON: %w", err)
	}
	return nil
}
