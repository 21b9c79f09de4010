package model

// Translation is one language-keyed text value.
//
// Keys follow two conventions consumed by the resolver:
// "questions.<key>.label" / ".legend_low" / ".legend_high" (sliders only)
// and "options.<question_key>.<option_key>".
type Translation struct {
	Key  string `json:"translation_key"`
	Lang string `json:"lang"`
	Text string `json:"text"`
}

// Language is a selectable survey language. New languages start disabled
// until their translations are complete.
type Language struct {
	Lang    string `json:"lang"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// MissingItems reports what a language lacks compared to the reference
// language.
type MissingItems struct {
	Translations []string `json:"translations"`
	ContentPages []string `json:"content_pages"`
}

// Complete reports whether nothing is missing.
func (m MissingItems) Complete() bool {
	return len(m.Translations) == 0 && len(m.ContentPages) == 0
}

// UpsertTranslationRequest creates or updates a translation entry.
type UpsertTranslationRequest struct {
	TranslationKey string `json:"translation_key" binding:"required,max=128"`
	Lang           string `json:"lang" binding:"required,max=8"`
	Text           string `json:"text" binding:"required,max=255"`
}

// UpsertLanguageRequest creates or updates a language. Enabled only works in
// the disable direction; enabling goes through the completeness-gated toggle.
type UpsertLanguageRequest struct {
	Lang    string `json:"lang" binding:"required,max=8"`
	Label   string `json:"label" binding:"required,max=64"`
	Enabled *bool  `json:"enabled"`
}

// ToggleLanguageRequest enables or disables a language.
type ToggleLanguageRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}
