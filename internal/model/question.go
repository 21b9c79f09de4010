package model

import (
	"bytes"
	"encoding/json"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeSlider QuestionType = "slider"
	QuestionTypeMulti  QuestionType = "multi"
	QuestionTypeText   QuestionType = "text"
)

// Question is a catalog entry. Its Required flag and Sort belong to the
// catalog view; when a question is rendered through a questionnaire slot,
// the slot's required flag and position win.
type Question struct {
	Key      string         `json:"question_key"`
	Type     QuestionType   `json:"type"`
	Required bool           `json:"required"`
	Sort     int            `json:"sort"`
	IsActive bool           `json:"is_active"`
	Config   QuestionConfig `json:"config"`
}

// QuestionOption is one selectable choice of a multi question.
type QuestionOption struct {
	QuestionKey string `json:"question_key"`
	OptionKey   string `json:"option_key"`
	Sort        int    `json:"sort"`
	IsActive    bool   `json:"is_active"`
}

// SliderConfig configures a slider question.
type SliderConfig struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// MultiConfig configures a multi-choice question.
type MultiConfig struct {
	AllowMultiple bool `json:"allow_multiple"`
}

// TextConfig configures a free-text question.
type TextConfig struct {
	Rows int `json:"rows"`
}

// QuestionConfig is a tagged union over the per-type config variants.
// Exactly one variant is set for a known question type; unknown types keep
// the raw JSON so nothing is lost on round trips.
type QuestionConfig struct {
	Slider *SliderConfig
	Multi  *MultiConfig
	Text   *TextConfig
	Raw    json.RawMessage
}

// DecodeQuestionConfig decodes a raw config document into the variant
// matching the question type. Empty or null input yields an empty config.
func DecodeQuestionConfig(qType QuestionType, raw []byte) (QuestionConfig, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return QuestionConfig{}, nil
	}

	var cfg QuestionConfig
	var err error
	switch qType {
	case QuestionTypeSlider:
		cfg.Slider = &SliderConfig{}
		err = json.Unmarshal(raw, cfg.Slider)
	case QuestionTypeMulti:
		cfg.Multi = &MultiConfig{}
		err = json.Unmarshal(raw, cfg.Multi)
	case QuestionTypeText:
		cfg.Text = &TextConfig{}
		err = json.Unmarshal(raw, cfg.Text)
	default:
		cfg.Raw = json.RawMessage(raw)
	}
	if err != nil {
		return QuestionConfig{}, err
	}
	return cfg, nil
}

// MarshalJSON emits the active variant as a flat object, matching the shape
// stored in the database and consumed by the survey client.
func (c QuestionConfig) MarshalJSON() ([]byte, error) {
	switch {
	case c.Slider != nil:
		return json.Marshal(c.Slider)
	case c.Multi != nil:
		return json.Marshal(c.Multi)
	case c.Text != nil:
		return json.Marshal(c.Text)
	case len(c.Raw) > 0:
		return c.Raw, nil
	default:
		return []byte("{}"), nil
	}
}

// UnmarshalJSON keeps the raw document; typed decoding happens once the
// question type is known (DecodeQuestionConfig).
func (c *QuestionConfig) UnmarshalJSON(data []byte) error {
	c.Raw = append(c.Raw[:0], data...)
	return nil
}

// Encode returns the JSON document to persist, or nil for an empty config.
func (c QuestionConfig) Encode() ([]byte, error) {
	if c.Slider == nil && c.Multi == nil && c.Text == nil && len(c.Raw) == 0 {
		return nil, nil
	}
	return c.MarshalJSON()
}

// UpsertQuestionRequest is the admin payload to create or update a question.
type UpsertQuestionRequest struct {
	QuestionKey string          `json:"question_key" binding:"required,max=64"`
	Type        string          `json:"type" binding:"required,oneof=slider multi text"`
	Required    bool            `json:"required"`
	Sort        int             `json:"sort" binding:"min=0"`
	IsActive    bool            `json:"is_active"`
	Config      json.RawMessage `json:"config"`
}

// UpsertOptionRequest is the admin payload to create or update an option.
// QuestionKey comes from the URL path, not the body.
type UpsertOptionRequest struct {
	QuestionKey string `json:"-"`
	OptionKey   string `json:"option_key" binding:"required,max=64"`
	Sort        int    `json:"sort" binding:"min=0"`
	IsActive    *bool  `json:"is_active"`
}
