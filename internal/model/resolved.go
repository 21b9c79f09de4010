package model

// ResolvedOption is one selectable choice of a resolved question, with its
// label already translated.
type ResolvedOption struct {
	Key   string `json:"key"`
	Sort  int    `json:"sort"`
	Label string `json:"label"`
}

// ResolvedQuestion is one entry of the final ordered question list produced
// by the questionnaire resolver, ready to render.
//
// Required carries the slot's flag, not the catalog question's. Sort is
// slot-major: slot sort times 100 plus a running counter, so entries of a
// pool slot never leapfrog the following slot. Legends are present only for
// sliders and fall back to the empty string; Label falls back to the raw
// question key.
type ResolvedQuestion struct {
	Key        string           `json:"key"`
	Type       QuestionType     `json:"type"`
	Required   bool             `json:"required"`
	Sort       int              `json:"sort"`
	Config     QuestionConfig   `json:"config"`
	Label      string           `json:"label"`
	LegendLow  *string          `json:"legend_low,omitempty"`
	LegendHigh *string          `json:"legend_high,omitempty"`
	Options    []ResolvedOption `json:"options,omitempty"`
}
