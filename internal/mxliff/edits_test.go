package mxliff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEditsJSON(t *testing.T) {
	path := writeTemp(t, "edits.json", `{"Quest_1/Line_1": "Hallo!", "Quest_1/Line_2": "Tschüss"}`)

	edits, err := LoadEdits(path)
	if err != nil {
		t.Fatalf("LoadEdits() error: %v", err)
	}

	want := map[string]string{
		"Quest_1/Line_1": "Hallo!",
		"Quest_1/Line_2": "Tschüss",
	}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEditsTSV(t *testing.T) {
	path := writeTemp(t, "edits.tsv", "Quest_1/Line_1\tfirst line\\nsecond line\n\nQuest_1/Line_2\tplain\n")

	edits, err := LoadEdits(path)
	if err != nil {
		t.Fatalf("LoadEdits() error: %v", err)
	}

	want := map[string]string{
		"Quest_1/Line_1": "first line\nsecond line",
		"Quest_1/Line_2": "plain",
	}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEditsUnsupportedFormat(t *testing.T) {
	path := writeTemp(t, "edits.xml", "<edits/>")
	if _, err := LoadEdits(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestApplyEdits(t *testing.T) {
	records := []Record{
		{Key: "K1", TargetText: "old", OriginalTargetText: "old"},
		{Key: "K2", TargetText: "keep", OriginalTargetText: "keep"},
		{Key: "", TargetText: "anon", OriginalTargetText: "anon"},
	}
	edits := map[string]string{"K1": "new", "Unknown": "x", "": "never"}

	applied := ApplyEdits(records, edits)

	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if records[0].TargetText != "new" || !records[0].Edited() {
		t.Errorf("record K1 = %+v", records[0])
	}
	if records[0].OriginalTargetText != "old" {
		t.Error("original snapshot was overwritten")
	}
	if records[1].TargetText != "keep" || records[2].TargetText != "anon" {
		t.Error("unrelated records were modified")
	}
}
