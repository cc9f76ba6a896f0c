package mxliff

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestPatchRoundTripIdentity(t *testing.T) {
	records, err := Extract(context.Background(), sampleXML, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	patched, warnings, err := Patch(sampleXML, records, zerolog.Nop())
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if patched != sampleXML {
		t.Errorf("unedited patch is not byte-identical (-want +got):\n%s", cmp.Diff(sampleXML, patched))
	}
}

func TestPatchSingleEdit(t *testing.T) {
	records, err := Extract(context.Background(), sampleXML, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	for i := range records {
		if records[i].Key == "Quest_1/Line_2" {
			records[i].TargetText = "General Kenobi!"
		}
	}

	patched, warnings, err := Patch(sampleXML, records, zerolog.Nop())
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if !strings.Contains(patched, "<target>General Kenobi!</target>") {
		t.Error("edited target text not present in output")
	}
	// Untouched targets keep their original bytes.
	if !strings.Contains(patched, "<target>Hallo.</target>") {
		t.Error("untouched target was modified")
	}
	if !strings.Contains(patched, "<target>Optionen</target>") {
		t.Error("untouched target in second group was modified")
	}
	// The unedited source text survives.
	if !strings.Contains(patched, "<source>General Kenobi.</source>") {
		t.Error("source text was modified")
	}
	if strings.Contains(patched, "XMLPATCH") {
		t.Error("splice markers leaked into output")
	}
}

func TestPatchIdenticalTargetsStayIndependent(t *testing.T) {
	// Two units carry the same target text under different keys; editing one
	// must not bleed into the other.
	doc := `<group id="g1">
<trans-unit id="u1">
  <context-group><context context-type="x-key">K1</context></context-group>
  <source>first source line here</source>
  <target>same text</target>
</trans-unit>
<trans-unit id="u2">
  <context-group><context context-type="x-key">K2</context></context-group>
  <source>second source line here</source>
  <target>same text</target>
</trans-unit>
</group>`

	records := []Record{
		{Key: "K1", TargetText: "same text", OriginalTargetText: "same text"},
		{Key: "K2", TargetText: "changed text", OriginalTargetText: "same text"},
	}

	patched, warnings, err := Patch(doc, records, zerolog.Nop())
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if strings.Count(patched, "<target>same text</target>") != 1 {
		t.Errorf("expected exactly one untouched target, got:\n%s", patched)
	}
	if strings.Count(patched, "<target>changed text</target>") != 1 {
		t.Errorf("expected exactly one edited target, got:\n%s", patched)
	}
}

func TestPatchKeyAttributeFallback(t *testing.T) {
	// The unit has no context annotation; its key lives in a key attribute
	// and is only resolvable by the group pass.
	doc := `<group id="g1">
<trans-unit id="u1" key="Attr/Key_1">
  <source>attribute keyed line</source>
  <target>old text</target>
</trans-unit>
</group>`

	records := []Record{
		{Key: "Attr/Key_1", TargetText: "new text", OriginalTargetText: "old text"},
	}

	patched, warnings, err := Patch(doc, records, zerolog.Nop())
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if !strings.Contains(patched, "<target>new text</target>") {
		t.Errorf("attribute-keyed edit not applied:\n%s", patched)
	}
}

func TestPatchGroupKeyTransIDFallback(t *testing.T) {
	// No unit-level key at all; the group annotation plus the trans-unit id
	// containment check resolves the edit.
	doc := `<group id="g1">
<context-group><context context-type="x-key">Quest_9/Line_1</context></context-group>
<trans-unit id="Quest_9/Line_1">
  <source>group keyed line</source>
  <target>old text</target>
</trans-unit>
</group>`

	records := []Record{
		{Key: "Quest_9/Line_1", TargetText: "new text", OriginalTargetText: "old text"},
	}

	patched, warnings, err := Patch(doc, records, zerolog.Nop())
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if !strings.Contains(patched, "<target>new text</target>") {
		t.Errorf("group-keyed edit not applied:\n%s", patched)
	}
}

func TestPatchUnresolvableKeyWarns(t *testing.T) {
	records := []Record{
		{Key: "Nowhere/Line_1", TargetText: "edited", OriginalTargetText: "original"},
		{Key: "K1", TargetText: "same", OriginalTargetText: "same"},
	}

	doc := `<group id="g1">
<trans-unit id="u1">
  <context-group><context context-type="x-key">K1</context></context-group>
  <source>a line</source>
  <target>same</target>
</trans-unit>
</group>`

	patched, warnings, err := Patch(doc, records, zerolog.Nop())
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}

	want := []string{"Nowhere/Line_1"}
	if diff := cmp.Diff(want, warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(patched, "XMLPATCH") {
		t.Error("splice markers leaked into output")
	}
}

func TestPatchMissingLinePlaceholdersSkipped(t *testing.T) {
	doc := `<group id="g1">
<trans-unit id="u1">
  <context-group><context context-type="x-key">K1</context></context-group>
  <source>a line</source>
  <target>old</target>
</trans-unit>
</group>`

	records := []Record{
		{Key: "K1", TargetText: "new", OriginalTargetText: "old"},
		{Key: "K1_missing_2", IsMissingLine: true, TargetText: "[MISSING LINE]", OriginalTargetText: ""},
	}

	patched, warnings, err := Patch(doc, records, zerolog.Nop())
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if strings.Contains(patched, "MISSING LINE") {
		t.Error("placeholder text leaked into document")
	}
	if !strings.Contains(patched, "<target>new</target>") {
		t.Error("real edit not applied")
	}
}

func TestPatchInputValidation(t *testing.T) {
	if _, _, err := Patch("", []Record{{Key: "K"}}, zerolog.Nop()); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("empty document error = %v, want ErrEmptyDocument", err)
	}
	if _, _, err := Patch("<xliff/>", nil, zerolog.Nop()); !errors.Is(err, ErrNoRecords) {
		t.Errorf("no records error = %v, want ErrNoRecords", err)
	}
}
