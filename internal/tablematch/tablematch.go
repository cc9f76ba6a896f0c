// Package tablematch correlates rows from externally extracted document
// tables with translation records, by exact lookup on normalized source text
// and similarity scoring when exact lookup fails.
package tablematch

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"mxliff-workbench/internal/cache"
	"mxliff-workbench/internal/mxliff"
	"mxliff-workbench/internal/progress"
	"mxliff-workbench/internal/textdiff"
	"mxliff-workbench/internal/textnorm"
)

const (
	// minMatchLength excludes source strings too short to match reliably.
	minMatchLength = 10
	// maxLengthDelta bounds the length difference considered for fuzzy
	// scoring; together with minMatchLength it keeps the scan tractable.
	maxLengthDelta = 5

	defaultThreshold  = 0.8
	defaultMaxMatches = 500

	normalizeCacheSize = 4096
)

// Row maps column names to cell text.
type Row map[string]string

// Table is one document table: named columns and their rows.
type Table struct {
	ID      int      `json:"id"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Update records one matched row: the translation key it resolved to, the
// comment to attach, and how the match was made. Fuzzy matches also carry
// the words the table text has that the record does not, so a reviewer can
// see at a glance where the two versions diverge.
type Update struct {
	Key        string   `json:"key"`
	SourceText string   `json:"source_text"`
	Comment    string   `json:"comment"`
	MatchType  string   `json:"match_type"`
	MatchRatio float64  `json:"match_ratio,omitempty"`
	NewWords   []string `json:"new_words,omitempty"`
}

// Result is the outcome of matching a document against a record set.
type Result struct {
	Matches int      `json:"matches"`
	Updates []Update `json:"updates"`
}

// Matcher correlates table rows with translation records.
type Matcher struct {
	// Threshold is the strict lower bound a fuzzy ratio must exceed.
	Threshold float64
	// MaxMatches caps total updates as a safety bound against runaway
	// matching on pathological inputs.
	MaxMatches int

	logger zerolog.Logger
	norm   *cache.TextCache
}

// NewMatcher creates a matcher with default calibration.
func NewMatcher(logger zerolog.Logger) *Matcher {
	return &Matcher{
		Threshold:  defaultThreshold,
		MaxMatches: defaultMaxMatches,
		logger:     logger,
		norm:       cache.New(textnorm.Normalize, normalizeCacheSize),
	}
}

// lookupEntry is the value side of the normalized source text index.
type lookupEntry struct {
	key      string
	original string
}

// Match scans every table row with both a source and a comment cell and
// resolves it against the record set. Rows matching nothing are dropped
// silently. Scanning stops once MaxMatches updates have been collected.
func (m *Matcher) Match(ctx context.Context, tables []Table, records []mxliff.Record, report progress.Func) (Result, error) {
	result := Result{Updates: []Update{}}
	if len(tables) == 0 || len(records) == 0 {
		return result, nil
	}

	// Index records by normalized source text. Short strings are too
	// ambiguous to match reliably and are excluded up front.
	lookup := make(map[string]lookupEntry)
	var lookupOrder []string
	for _, r := range records {
		if r.Key == "" || r.IsMissingLine {
			continue
		}
		source := strings.TrimSpace(r.SourceText)
		if source == "" {
			continue
		}
		clean := m.norm.Get(source)
		if utf8.RuneCountInString(clean) < minMatchLength {
			continue
		}
		if _, exists := lookup[clean]; !exists {
			lookupOrder = append(lookupOrder, clean)
		}
		lookup[clean] = lookupEntry{key: r.Key, original: source}
	}

	m.logger.Info().
		Int("lookup_size", len(lookup)).
		Int("tables", len(tables)).
		Msg("Starting table matching")

scan:
	for tableIdx, table := range tables {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		sourceCol, commentCol := detectColumns(table)
		if sourceCol == "" || commentCol == "" {
			m.logger.Debug().Int("table", table.ID).Msg("Table lacks source or comment column, skipping")
			continue
		}

		for _, row := range table.Rows {
			if result.Matches >= m.MaxMatches {
				m.logger.Warn().Int("cap", m.MaxMatches).Msg("Match cap reached, stopping scan")
				break scan
			}

			sourceText := strings.TrimSpace(row[sourceCol])
			commentText := strings.TrimSpace(row[commentCol])
			if sourceText == "" || commentText == "" {
				continue
			}

			clean := m.norm.Get(sourceText)

			// Exact match wins outright; fuzzy scoring never runs for it.
			if entry, ok := lookup[clean]; ok {
				result.Updates = append(result.Updates, Update{
					Key:        entry.key,
					SourceText: clean,
					Comment:    commentText,
					MatchType:  "exact",
				})
				result.Matches++
				continue
			}

			if update, ok := m.fuzzyMatch(clean, commentText, lookup, lookupOrder); ok {
				result.Updates = append(result.Updates, update)
				result.Matches++
			}
		}

		report.Report((tableIdx+1)*100/len(tables), "Matching tables...")
	}

	m.logger.Info().Int("matches", result.Matches).Msg("Table matching complete")
	return result, nil
}

// fuzzyMatch finds the best-scoring lookup entry strictly above the
// threshold. The length pre-filters keep the scan linear in practice.
func (m *Matcher) fuzzyMatch(clean, commentText string, lookup map[string]lookupEntry, lookupOrder []string) (Update, bool) {
	cleanLen := utf8.RuneCountInString(clean)
	if cleanLen < minMatchLength {
		return Update{}, false
	}

	bestRatio := m.Threshold
	var best *lookupEntry

	for _, candidate := range lookupOrder {
		candidateLen := utf8.RuneCountInString(candidate)
		if candidateLen < minMatchLength {
			continue
		}
		delta := cleanLen - candidateLen
		if delta < -maxLengthDelta || delta > maxLengthDelta {
			continue
		}

		ratio := textdiff.Ratio(clean, candidate)
		if ratio > bestRatio {
			bestRatio = ratio
			entry := lookup[candidate]
			best = &entry
		}
	}

	if best == nil {
		return Update{}, false
	}
	return Update{
		Key:        best.key,
		SourceText: best.original,
		Comment:    commentText,
		MatchType:  "fuzzy",
		MatchRatio: bestRatio,
		NewWords:   textdiff.WordDifferences(m.norm.Get(best.original), clean),
	}, true
}

// detectColumns picks the source and comment columns by name. The comment
// column prefers one also naming the content team ("coteam") over a generic
// comment column.
func detectColumns(table Table) (sourceCol, commentCol string) {
	columns := table.Columns
	if len(columns) == 0 && len(table.Rows) > 0 {
		for name := range table.Rows[0] {
			columns = append(columns, name)
		}
		sort.Strings(columns)
	}

	coteam := false
	for _, col := range columns {
		lower := strings.ToLower(col)
		if sourceCol == "" && strings.Contains(lower, "source") {
			sourceCol = col
		}
		if strings.Contains(lower, "comment") {
			if strings.Contains(lower, "coteam") && !coteam {
				commentCol = col
				coteam = true
			} else if commentCol == "" {
				commentCol = col
			}
		}
	}

	return sourceCol, commentCol
}

// ApplyComments appends each update's comment to the note text of the first
// record carrying the matched key. Returns the number of comments attached
// and the set of keys touched.
func ApplyComments(records []mxliff.Record, updates []Update) (int, map[string]bool) {
	updatedKeys := make(map[string]bool)
	applied := 0

	for _, update := range updates {
		if update.Key == "" {
			continue
		}
		for i := range records {
			if records[i].Key != update.Key || records[i].IsMissingLine {
				continue
			}
			mxliff.AppendCoTComment(&records[i], update.Comment)
			applied++
			updatedKeys[update.Key] = true
			break
		}
	}

	return applied, updatedKeys
}
