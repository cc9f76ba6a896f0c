package mxliff

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ExportTSV writes records to a TSV file with one row per record.
func ExportTSV(records []Record, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create TSV file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "key\tsource_text\ttarget_text\tspeaker\torder_value\tgroup_id\ttrans_id")

	for _, r := range records {
		fmt.Fprintf(f, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Key,
			escapeTSV(r.SourceText),
			escapeTSV(r.TargetText),
			escapeTSV(r.Speaker),
			r.OrderValue,
			r.GroupID,
			r.TransID,
		)
	}

	log.Info().Str("path", outputPath).Int("records", len(records)).Msg("Exported records to TSV")
	return nil
}

// ExportJSON writes records to an indented JSON file.
func ExportJSON(records []Record, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create JSON file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("encode records JSON: %w", err)
	}

	log.Info().Str("path", outputPath).Int("records", len(records)).Msg("Exported records to JSON")
	return nil
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}

// unescapeTSV reverses escapeTSV.
func unescapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\\t", "\t")
	s = strings.ReplaceAll(s, "\\n", "\n")
	s = strings.ReplaceAll(s, "\\r", "\r")
	return s
}
