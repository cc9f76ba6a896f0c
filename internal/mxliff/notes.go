package mxliff

import (
	"regexp"
	"strconv"
	"strings"
)

// Patterns for the "Label: value" lines found in key-note annotations. The
// primary set is matched independently; the fallback set only fills fields
// the primary set left empty.
var (
	speakerPattern       = regexp.MustCompile(`Speaker:\s*([^\n]+)`)
	speakerTargetPattern = regexp.MustCompile(`Target:\s*([^\n]+)`)
	speakerGenderPattern = regexp.MustCompile(`Speaker Gender:\s*([^\n]+)`)
	playerClassPattern   = regexp.MustCompile(`Class:\s*([^\n]+)`)
	playerGenderPattern  = regexp.MustCompile(`Player Gender:\s*([^\n]+)`)

	genderFallbackPattern = regexp.MustCompile(`Gender:\s*([^,\n]+)`)
	speakingToPattern     = regexp.MustCompile(`speaking to:\s*([^,\n]+)`)

	orderPattern = regexp.MustCompile(`(?i)Order:\s*(\d+)`)

	commentKindPattern = regexp.MustCompile(`(Developer Comment:|Comment:|CoT Comment:)`)
	devCommentPattern  = regexp.MustCompile(`Developer Comment:([^\n]+)`)
	cotCommentPattern  = regexp.MustCompile(`CoT Comment:([^\n]+)`)
)

// noteMeta holds the metadata fields parsed out of a key-note blob.
type noteMeta struct {
	speaker       string
	speakerTarget string
	speakerGender string
	playerClass   string
	playerGender  string
	orderValue    int
}

func parseNoteMeta(noteText string) noteMeta {
	meta := noteMeta{orderValue: DefaultOrderValue}
	if noteText == "" {
		return meta
	}

	meta.speaker = captureTrimmed(speakerPattern, noteText)
	meta.speakerTarget = captureTrimmed(speakerTargetPattern, noteText)
	meta.speakerGender = captureTrimmed(speakerGenderPattern, noteText)
	meta.playerClass = captureTrimmed(playerClassPattern, noteText)
	meta.playerGender = captureTrimmed(playerGenderPattern, noteText)

	if meta.speakerGender == "" {
		meta.speakerGender = captureTrimmed(genderFallbackPattern, noteText)
	}
	if meta.speakerTarget == "" {
		meta.speakerTarget = captureTrimmed(speakingToPattern, noteText)
	}

	meta.orderValue = ExtractOrderValue(noteText)

	return meta
}

func captureTrimmed(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractOrderValue parses the Order annotation from a key-note blob,
// defaulting to DefaultOrderValue when absent or malformed.
func ExtractOrderValue(noteText string) int {
	if noteText == "" {
		return DefaultOrderValue
	}
	m := orderPattern.FindStringSubmatch(noteText)
	if m == nil {
		return DefaultOrderValue
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultOrderValue
	}
	return n
}

// HasComments reports whether a record's note text carries any recognized
// comment line (Developer Comment, plain Comment, or CoT Comment).
func HasComments(r *Record) bool {
	return r.NoteText != "" && commentKindPattern.MatchString(r.NoteText)
}

// CommentText extracts every recognized comment line from a record's note
// text, labeled and joined with newlines.
func CommentText(r *Record) string {
	if r.NoteText == "" {
		return ""
	}

	var comments []string

	if m := devCommentPattern.FindStringSubmatch(r.NoteText); m != nil {
		comments = append(comments, "Developer Comment: "+strings.TrimSpace(m[1]))
	}
	if plain := plainComment(r.NoteText); plain != "" {
		comments = append(comments, "Comment: "+plain)
	}
	if m := cotCommentPattern.FindStringSubmatch(r.NoteText); m != nil {
		comments = append(comments, "CoT Comment: "+strings.TrimSpace(m[1]))
	}

	return strings.Join(comments, "\n")
}

// plainComment finds the first unlabeled "Comment:" line, skipping the
// Developer and CoT variants so their text is never double-reported.
func plainComment(noteText string) string {
	offset := 0
	for {
		idx := strings.Index(noteText[offset:], "Comment:")
		if idx < 0 {
			return ""
		}
		start := offset + idx
		offset = start + len("Comment:")

		prefix := noteText[:start]
		if strings.HasSuffix(prefix, "Developer ") || strings.HasSuffix(prefix, "CoT ") {
			continue
		}

		line := noteText[offset:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		if strings.Contains(line, "CoT") {
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
}

// AppendCoTComment attaches a content-team comment to a record's note text,
// preserving any existing annotations.
func AppendCoTComment(r *Record, comment string) {
	if r.NoteText != "" {
		r.NoteText += "\nCoT Comment: " + comment
	} else {
		r.NoteText = "CoT Comment: " + comment
	}
}
