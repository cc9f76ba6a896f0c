package mxliff

// DefaultOrderValue sorts records without an explicit Order annotation after
// all ordered ones.
const DefaultOrderValue = 9999

// Record represents one translatable unit extracted from an MXLIFF document.
type Record struct {
	// Index is the creation order across the whole file, used as a sort
	// tie-break to preserve document order.
	Index int `json:"index"`

	// GroupID and TransID come from the source XML's structural elements and
	// exist for traceability only.
	GroupID string `json:"group_id"`
	TransID string `json:"trans_id"`

	// Key is the logical identifier parsed from the context annotation. Once
	// non-empty it is the stable handle used for patch matching.
	Key string `json:"key"`

	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`

	// OriginalTargetText is set exactly once at extraction time and is the
	// sole basis for edit detection.
	OriginalTargetText string `json:"original_target_text"`

	// NoteText is the raw annotation blob the metadata fields below are
	// extracted from.
	NoteText string `json:"note_text"`

	Speaker       string `json:"speaker"`
	SpeakerTarget string `json:"speaker_target"`
	SpeakerGender string `json:"speaker_gender"`
	PlayerClass   string `json:"player_class"`
	PlayerGender  string `json:"player_gender"`

	OrderValue  int  `json:"order_value"`
	IsMenuLabel bool `json:"is_menulabel"`

	// IsMissingLine marks synthesized placeholders for gaps in a dialogue
	// group's line sequence; MissingLine is the absent line number.
	IsMissingLine bool `json:"is_missing_line,omitempty"`
	MissingLine   int  `json:"missing_line_number,omitempty"`
}

// Edited reports whether the target text differs from the parsed original.
func (r *Record) Edited() bool {
	return r.TargetText != r.OriginalTargetText
}
