package mxliff

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrEmptyDocument is returned when there is no original XML to patch.
	ErrEmptyDocument = errors.New("mxliff: no original XML content available")
	// ErrNoRecords is returned when there are no records to patch from.
	ErrNoRecords = errors.New("mxliff: no records available")
)

var (
	targetTagPattern = regexp.MustCompile(`(?s)(<target[^>]*>)(.*?)(</target>)`)
	keyAttrPattern   = regexp.MustCompile(`(?s)<trans-unit[^>]*key="([^"]*)"`)
	markerPattern    = regexp.MustCompile(`<!-- XMLPATCH_[^>]*-->`)
)

// Patch splices edited target texts back into the original document. The
// result is byte-identical to the input outside the touched target spans;
// attribute order, whitespace, and comments survive untouched because the
// document is never rebuilt, only spliced. Keys that cannot be located are
// returned as warnings, not errors.
func Patch(originalXML string, records []Record, logger zerolog.Logger) (string, []string, error) {
	if originalXML == "" {
		return "", nil, ErrEmptyDocument
	}
	if len(records) == 0 {
		return "", nil, ErrNoRecords
	}

	// Collect the latest target text per key and flag which keys changed.
	keyToTranslation := make(map[string]string)
	edited := make(map[string]string)
	for _, r := range records {
		if r.Key == "" || r.IsMissingLine {
			continue
		}
		keyToTranslation[r.Key] = r.TargetText
		if r.Edited() {
			edited[r.Key] = r.TargetText
		}
	}

	logger.Info().
		Int("edited", len(edited)).
		Int("total", len(keyToTranslation)).
		Msg("Collected translations")

	// No-op fast path: the caller gets the exact original bytes back.
	if len(edited) == 0 {
		logger.Info().Msg("No translations were edited, returning original XML")
		return originalXML, nil, nil
	}

	updated := originalXML
	applied := make(map[string]bool)

	// First pass: locate each trans-unit span and patch it in place when its
	// own context annotation names an edited key.
	units := transUnitPattern.FindAllString(updated, -1)
	logger.Info().Int("units", len(units)).Msg("Located trans-unit spans")

	for _, unit := range units {
		key, _, ok := contextAnnotations(unit)
		if !ok || key == "" {
			continue
		}
		newText, isEdited := edited[key]
		if !isEdited {
			continue
		}

		patchedUnit, changed := replaceTargetText(unit, newText)
		if !changed {
			continue
		}

		updated = spliceSpan(updated, unit, patchedUnit)
		applied[key] = true
	}

	// Second pass: edited keys the direct pass missed are resolved at group
	// granularity with more permissive key lookups.
	missing := missingKeys(edited, applied)
	if len(missing) > 0 {
		logger.Warn().
			Int("count", len(missing)).
			Strs("keys", truncateKeys(missing, 5)).
			Msg("Edited translations not directly applied, trying group pass")

		updated = patchByGroup(updated, edited, missing, applied)
	}

	// Anything still unresolved is reported back to the caller as warnings.
	unapplied := missingKeys(edited, applied)
	if len(unapplied) > 0 {
		logger.Warn().
			Int("count", len(unapplied)).
			Strs("keys", truncateKeys(unapplied, 5)).
			Msg("Edited translations could not be applied")
	}

	logger.Info().
		Int("applied", len(applied)).
		Int("edited", len(edited)).
		Msg("Patch complete")

	// Markers must never survive into the final output.
	return markerPattern.ReplaceAllString(updated, ""), unapplied, nil
}

// replaceTargetText rewrites only the inner text of the unit's target
// element, leaving every other byte of the span untouched.
func replaceTargetText(unit, newText string) (string, bool) {
	m := targetTagPattern.FindStringSubmatch(unit)
	if m == nil {
		return unit, false
	}
	return strings.Replace(unit, m[0], m[1]+newText+m[3], 1), true
}

// spliceSpan replaces a span inside doc via a unique bracketing marker, so
// that identical duplicate spans elsewhere cannot be hit by accident.
func spliceSpan(doc, span, replacement string) string {
	id := uuid.NewString()
	start := fmt.Sprintf("<!-- XMLPATCH_START_%s -->", id)
	end := fmt.Sprintf("<!-- XMLPATCH_END_%s -->", id)

	doc = strings.ReplaceAll(doc, span, start+span+end)
	return strings.ReplaceAll(doc, start+span+end, start+replacement+end)
}

// patchByGroup retries unresolved keys inside each group span, resolving keys
// through the unit context, a key attribute, or the group-level key combined
// with a trans-unit id containment check.
func patchByGroup(doc string, edited map[string]string, missing []string, applied map[string]bool) string {
	missingSet := make(map[string]bool, len(missing))
	for _, k := range missing {
		missingSet[k] = true
	}

	for _, group := range groupPattern.FindAllString(doc, -1) {
		patchedGroup := group
		modified := false

		for _, unit := range transUnitPattern.FindAllString(group, -1) {
			key := resolveGroupUnitKey(group, unit, missingSet)
			if key == "" || !missingSet[key] {
				continue
			}

			patchedUnit, changed := replaceTargetText(unit, edited[key])
			if !changed {
				continue
			}

			patchedGroup = strings.ReplaceAll(patchedGroup, unit, patchedUnit)
			modified = true
			applied[key] = true
		}

		if modified {
			doc = spliceSpan(doc, group, patchedGroup)
		}
	}

	return doc
}

// resolveGroupUnitKey tries the permissive key lookups for one unit inside a
// group span.
func resolveGroupUnitKey(group, unit string, missingSet map[string]bool) string {
	// Direct context annotation on the unit.
	if key, _, ok := contextAnnotations(unit); ok && key != "" {
		return key
	}

	// Key embedded as a trans-unit attribute.
	if m := keyAttrPattern.FindStringSubmatch(unit); m != nil {
		if key := strings.TrimSpace(m[1]); key != "" {
			return key
		}
	}

	// Group-level key plus containment between the unit id and a missing key.
	if groupKey, _, ok := contextAnnotations(group); ok && groupKey != "" {
		if m := transIDPattern.FindStringSubmatch(unit); m != nil {
			transID := strings.TrimSpace(m[1])
			if transID != "" {
				for _, key := range sortedKeys(missingSet) {
					if strings.Contains(key, transID) || strings.Contains(transID, key) {
						return key
					}
				}
			}
		}
	}

	return ""
}

func missingKeys(edited map[string]string, applied map[string]bool) []string {
	var keys []string
	for k := range edited {
		if !applied[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateKeys(keys []string, max int) []string {
	if len(keys) <= max {
		return keys
	}
	return keys[:max]
}
