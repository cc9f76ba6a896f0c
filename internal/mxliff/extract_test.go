package mxliff

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<xliff version="1.2">
<file original="dialogue.txt" source-language="en" target-language="de">
<body>
<group id="g1">
  <context-group>
    <context context-type="x-key">Quest_1/Line_1</context>
    <context context-type="x-key-note">Speaker: Alice
Speaker Gender: Female
speaking to: Bob
Order: 1</context>
  </context-group>
  <trans-unit id="tu1">
    <source>Hello there.</source>
    <target>Hallo.</target>
  </trans-unit>
  <trans-unit id="tu2">
    <context-group>
      <context context-type="x-key">Quest_1/Line_2</context>
      <context context-type="x-key-note">Speaker: Bob
Target: Alice
Gender: Male
Class: Warrior
Player Gender: Any
Order: 2</context>
    </context-group>
    <source>General Kenobi.</source>
    <target>General Kenobi.</target>
  </trans-unit>
</group>
<group id="g2">
  <trans-unit id="tu3">
    <context-group>
      <context context-type="x-key">Menu/MenuLabel_Options</context>
      <context context-type="x-key-note">Developer Comment: keep short</context>
    </context-group>
    <source>Options menu entry text.</source>
    <target>Optionen</target>
  </trans-unit>
</group>
</body>
</file>
</xliff>`

func extractSample(t *testing.T) []Record {
	t.Helper()
	records, err := Extract(context.Background(), sampleXML, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	return records
}

func TestExtractRecords(t *testing.T) {
	records := extractSample(t)

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	for i, r := range records {
		if r.Index != i {
			t.Errorf("record %d has index %d", i, r.Index)
		}
		if r.OriginalTargetText != r.TargetText {
			t.Errorf("record %d: original target snapshot differs from target", i)
		}
		if r.Edited() {
			t.Errorf("record %d reports edited right after extraction", i)
		}
	}

	first := records[0]
	if first.Key != "Quest_1/Line_1" {
		t.Errorf("first key = %q", first.Key)
	}
	if first.GroupID != "g1" || first.TransID != "tu1" {
		t.Errorf("first ids = %s/%s, want g1/tu1", first.GroupID, first.TransID)
	}
	if first.SourceText != "Hello there." || first.TargetText != "Hallo." {
		t.Errorf("first texts = %q/%q", first.SourceText, first.TargetText)
	}
}

func TestExtractGroupContextInheritedByUnit(t *testing.T) {
	records := extractSample(t)

	// tu1 has no context-group of its own, so the group annotation applies.
	first := records[0]
	if first.Speaker != "Alice" {
		t.Errorf("speaker = %q, want Alice", first.Speaker)
	}
	if first.SpeakerGender != "Female" {
		t.Errorf("speaker gender = %q, want Female", first.SpeakerGender)
	}
	if first.SpeakerTarget != "Bob" {
		t.Errorf("speaker target = %q, want Bob (from speaking to fallback)", first.SpeakerTarget)
	}
	if first.OrderValue != 1 {
		t.Errorf("order = %d, want 1", first.OrderValue)
	}
}

func TestExtractUnitContextOverridesGroup(t *testing.T) {
	records := extractSample(t)

	// tu2 carries its own context-group, which replaces the group defaults
	// entirely rather than merging with them.
	second := records[1]
	if second.Key != "Quest_1/Line_2" {
		t.Errorf("key = %q, want Quest_1/Line_2", second.Key)
	}
	if second.Speaker != "Bob" {
		t.Errorf("speaker = %q, want Bob", second.Speaker)
	}
	if second.SpeakerTarget != "Alice" {
		t.Errorf("speaker target = %q, want Alice", second.SpeakerTarget)
	}
	if second.SpeakerGender != "Male" {
		t.Errorf("speaker gender = %q, want Male (gender fallback)", second.SpeakerGender)
	}
	if second.PlayerClass != "Warrior" {
		t.Errorf("player class = %q, want Warrior", second.PlayerClass)
	}
	if second.PlayerGender != "Any" {
		t.Errorf("player gender = %q, want Any", second.PlayerGender)
	}
	if second.OrderValue != 2 {
		t.Errorf("order = %d, want 2", second.OrderValue)
	}
}

func TestExtractMenuLabelFlag(t *testing.T) {
	records := extractSample(t)

	third := records[2]
	if !third.IsMenuLabel {
		t.Error("MenuLabel key not flagged")
	}
	if third.OrderValue != DefaultOrderValue {
		t.Errorf("order = %d, want default %d", third.OrderValue, DefaultOrderValue)
	}
}

func TestExtractEmptyContent(t *testing.T) {
	records, err := Extract(context.Background(), "", zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from empty content, want 0", len(records))
	}
}

func TestExtractCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, sampleXML, zerolog.Nop(), nil)
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestExtractUnterminatedGroupIgnored(t *testing.T) {
	// An unterminated group never matches the span pattern, so only the
	// well-formed one yields records.
	content := sampleXML + `<group id="bad"><trans-unit id="x"><source>a</source>`
	records, err := Extract(context.Background(), content, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}
