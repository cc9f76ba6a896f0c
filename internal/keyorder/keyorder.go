// Package keyorder derives grouping and ordering information from record
// keys and notes: the main key that clusters related dialogue lines, the
// line-sequence number, a natural sort key, and detection of gaps in a
// group's line sequence.
package keyorder

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mxliff-workbench/internal/mxliff"
)

// UngroupedKey collects records whose key yields no main key.
const UngroupedKey = "UngroupedContent"

// MissingLineText is the placeholder text shown for synthesized gap entries.
const MissingLineText = "[MISSING LINE]"

var (
	linePattern    = regexp.MustCompile(`(?i)Line[_:](\d+)`)
	numbersPattern = regexp.MustCompile(`\d+`)
)

// MainKey extracts the group-identifying prefix of a full key: the part
// before the first slash, else before the last dot, else the whole key.
func MainKey(fullKey string) string {
	if fullKey == "" {
		return ""
	}
	if idx := strings.Index(fullKey, "/"); idx >= 0 {
		return fullKey[:idx]
	}
	if idx := strings.LastIndex(fullKey, "."); idx >= 0 {
		return fullKey[:idx]
	}
	return fullKey
}

// LineNumber extracts the dialogue line number from a record's key, falling
// back to its note text, then to its order value.
func LineNumber(r *mxliff.Record) int {
	if m := linePattern.FindStringSubmatch(r.Key); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if m := linePattern.FindStringSubmatch(r.NoteText); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return r.OrderValue
}

// SortKey orders main keys naturally: keys containing "Main" sort before all
// others, and within each bucket the integers embedded in the key compare as
// a lexicographic tuple rather than as text.
type SortKey struct {
	NotMain bool
	Numbers []int
}

// MakeSortKey derives the sort key for a main key string.
func MakeSortKey(mainKey string) SortKey {
	key := SortKey{NotMain: !strings.Contains(mainKey, "Main")}
	for _, num := range numbersPattern.FindAllString(mainKey, -1) {
		if n, err := strconv.Atoi(num); err == nil {
			key.Numbers = append(key.Numbers, n)
		}
	}
	return key
}

// Less reports whether k orders before other.
func (k SortKey) Less(other SortKey) bool {
	if k.NotMain != other.NotMain {
		return !k.NotMain
	}
	for i := 0; i < len(k.Numbers) && i < len(other.Numbers); i++ {
		if k.Numbers[i] != other.Numbers[i] {
			return k.Numbers[i] < other.Numbers[i]
		}
	}
	return len(k.Numbers) < len(other.Numbers)
}

// Group is an ordered cluster of records sharing a main key, gap-filled with
// placeholder entries for missing line numbers.
type Group struct {
	MainKey           string
	Records           []mxliff.Record
	ContainsMenuLabel bool
}

// Organize clusters records by main key, sorts groups naturally, sorts the
// records inside each group by (order value, original index), and synthesizes
// a placeholder record for every gap in the line sequence starting from 1.
func Organize(records []mxliff.Record) []Group {
	grouped := make(map[string][]mxliff.Record)
	var order []string

	for _, r := range records {
		mainKey := MainKey(r.Key)
		if mainKey == "" {
			mainKey = UngroupedKey
		}
		if _, seen := grouped[mainKey]; !seen {
			order = append(order, mainKey)
		}
		grouped[mainKey] = append(grouped[mainKey], r)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return MakeSortKey(order[i]).Less(MakeSortKey(order[j]))
	})

	groups := make([]Group, 0, len(order))
	for _, mainKey := range order {
		recs := grouped[mainKey]
		sort.SliceStable(recs, func(i, j int) bool {
			if recs[i].OrderValue != recs[j].OrderValue {
				return recs[i].OrderValue < recs[j].OrderValue
			}
			return recs[i].Index < recs[j].Index
		})

		group := Group{MainKey: mainKey}
		expected := 1

		for _, r := range recs {
			line := LineNumber(&r)
			// Records without a real line number (fallback order value) do
			// not participate in gap detection.
			if line >= mxliff.DefaultOrderValue {
				group.Records = append(group.Records, r)
				continue
			}
			for expected < line {
				group.Records = append(group.Records, missingLinePlaceholder(r, expected))
				expected++
			}
			group.Records = append(group.Records, r)
			expected = line + 1
		}

		for _, r := range group.Records {
			if r.IsMenuLabel || strings.Contains(r.Key, "MenuLabel") {
				group.ContainsMenuLabel = true
				break
			}
		}

		groups = append(groups, group)
	}

	return groups
}

// missingLinePlaceholder synthesizes a record standing in for an absent line.
// The placeholder inherits the neighbor's metadata but carries a derived key
// so it can never collide with a real patch target.
func missingLinePlaceholder(neighbor mxliff.Record, line int) mxliff.Record {
	placeholder := neighbor
	placeholder.IsMissingLine = true
	placeholder.MissingLine = line
	placeholder.SourceText = MissingLineText
	placeholder.TargetText = MissingLineText
	placeholder.OriginalTargetText = MissingLineText
	placeholder.Key = neighbor.Key + "_missing_" + strconv.Itoa(line)
	return placeholder
}

// MissingLines reports the absent line numbers of one dialogue group.
type MissingLines struct {
	Group string `json:"group"`
	Lines []int  `json:"missing_lines"`
}

// MissingLineReport aggregates the synthesized placeholders of every group
// into a per-group report, groups in display order, lines ascending.
func MissingLineReport(groups []Group) []MissingLines {
	var report []MissingLines
	for _, g := range groups {
		var lines []int
		for _, r := range g.Records {
			if r.IsMissingLine {
				lines = append(lines, r.MissingLine)
			}
		}
		if len(lines) == 0 {
			continue
		}
		sort.Ints(lines)
		report = append(report, MissingLines{Group: g.MainKey, Lines: lines})
	}
	return report
}
