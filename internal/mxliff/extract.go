package mxliff

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"mxliff-workbench/internal/progress"
)

// Structural patterns for the MXLIFF dialect. Spans are matched open-to-close
// without nesting awareness: a trans-unit must not itself contain a literal
// nested trans-unit tag. Rewriting through a DOM would renormalize the
// document, so both extraction and patching stay at the text level.
var (
	groupPattern        = regexp.MustCompile(`(?s)<group[^>]*>.*?</group>`)
	groupIDPattern      = regexp.MustCompile(`<group\s+id="([^"]*)"`)
	contextGroupPattern = regexp.MustCompile(`(?s)<context-group[^>]*>(.*?)</context-group>`)
	keyPattern          = regexp.MustCompile(`(?s)<context\s+context-type="x-key"[^>]*>(.*?)</context>`)
	keyNotePattern      = regexp.MustCompile(`(?s)<context\s+context-type="x-key-note"[^>]*>(.*?)</context>`)
	transUnitPattern    = regexp.MustCompile(`(?s)<trans-unit[^>]*>.*?</trans-unit>`)
	transIDPattern      = regexp.MustCompile(`<trans-unit\s+id="([^"]*)"`)
	sourcePattern       = regexp.MustCompile(`(?s)<source[^>]*>(.*?)</source>`)
	targetPattern       = regexp.MustCompile(`(?s)<target[^>]*>(.*?)</target>`)
)

// Extract parses MXLIFF content into records, one per well-formed trans-unit,
// in document order. A failure inside one group is logged and that group
// skipped; extraction never aborts wholesale for a single bad group. Finding
// no groups at all is not an error and yields an empty result.
func Extract(ctx context.Context, xmlContent string, logger zerolog.Logger, report progress.Func) ([]Record, error) {
	report.Report(60, "Parsing XML...")

	groups := groupPattern.FindAllString(xmlContent, -1)
	logger.Info().Int("groups", len(groups)).Msg("Located group elements")

	var records []Record

	for groupIdx, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		recs, err := extractGroup(group, groupIdx, len(records))
		if err != nil {
			logger.Error().Err(err).Int("group", groupIdx).Msg("Failed to process group, skipping")
			continue
		}
		records = append(records, recs...)

		if len(groups) > 0 {
			report.Report(60+(groupIdx+1)*40/len(groups), "Parsing XML...")
		}
	}

	logger.Info().Int("records", len(records)).Msg("Extraction complete")
	return records, nil
}

// extractGroup processes a single group span. Panics are converted to errors
// so one malformed group cannot take down the whole extraction.
func extractGroup(group string, groupIdx, nextIndex int) (records []Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("process group %d: %v", groupIdx, r)
		}
	}()

	groupID := fmt.Sprintf("group_%d", groupIdx)
	if m := groupIDPattern.FindStringSubmatch(group); m != nil {
		groupID = m[1]
	}

	// Group-level context supplies key/key-note defaults for every unit.
	groupKey, groupNote, _ := contextAnnotations(group)

	for transIdx, unit := range transUnitPattern.FindAllString(group, -1) {
		transID := fmt.Sprintf("trans_%d", transIdx)
		if m := transIDPattern.FindStringSubmatch(unit); m != nil {
			transID = m[1]
		}

		sourceText := ""
		if m := sourcePattern.FindStringSubmatch(unit); m != nil {
			sourceText = strings.TrimSpace(m[1])
		}
		targetText := ""
		if m := targetPattern.FindStringSubmatch(unit); m != nil {
			targetText = strings.TrimSpace(m[1])
		}

		// A unit-level context block replaces the group defaults entirely.
		unitKey, unitNote := groupKey, groupNote
		if k, n, ok := contextAnnotations(unit); ok {
			unitKey, unitNote = k, n
		}

		meta := parseNoteMeta(unitNote)

		records = append(records, Record{
			Index:              nextIndex + len(records),
			GroupID:            groupID,
			TransID:            transID,
			Key:                unitKey,
			SourceText:         sourceText,
			TargetText:         targetText,
			OriginalTargetText: targetText,
			NoteText:           unitNote,
			Speaker:            meta.speaker,
			SpeakerTarget:      meta.speakerTarget,
			SpeakerGender:      meta.speakerGender,
			PlayerClass:        meta.playerClass,
			PlayerGender:       meta.playerGender,
			OrderValue:         meta.orderValue,
			IsMenuLabel:        strings.Contains(unitKey, "MenuLabel"),
		})
	}

	return records, nil
}

// contextAnnotations extracts the x-key and x-key-note values from the first
// context-group inside the given fragment. ok is false when the fragment has
// no context-group at all.
func contextAnnotations(fragment string) (key, note string, ok bool) {
	m := contextGroupPattern.FindStringSubmatch(fragment)
	if m == nil {
		return "", "", false
	}
	inner := m[1]
	if km := keyPattern.FindStringSubmatch(inner); km != nil {
		key = strings.TrimSpace(km[1])
	}
	if nm := keyNotePattern.FindStringSubmatch(inner); nm != nil {
		note = strings.TrimSpace(nm[1])
	}
	return key, note, true
}
