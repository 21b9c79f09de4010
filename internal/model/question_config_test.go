package model

import (
	"encoding/json"
	"testing"
)

func TestDecodeQuestionConfigSlider(t *testing.T) {
	cfg, err := DecodeQuestionConfig(QuestionTypeSlider, []byte(`{"min":0,"max":100,"step":1,"default":50}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Slider == nil {
		t.Fatal("slider variant not set")
	}
	if cfg.Slider.Max != 100 || cfg.Slider.Default != 50 {
		t.Errorf("unexpected slider config: %#v", cfg.Slider)
	}
	if cfg.Multi != nil || cfg.Text != nil {
		t.Error("only one variant may be set")
	}
}

func TestDecodeQuestionConfigEmpty(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte("null")} {
		cfg, err := DecodeQuestionConfig(QuestionTypeMulti, raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Slider != nil || cfg.Multi != nil || cfg.Text != nil || cfg.Raw != nil {
			t.Errorf("expected empty config for %q, got %#v", raw, cfg)
		}
	}
}

func TestDecodeQuestionConfigUnknownTypeKeepsRaw(t *testing.T) {
	raw := []byte(`{"anything":true}`)
	cfg, err := DecodeQuestionConfig(QuestionType("future"), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(cfg.Raw) != string(raw) {
		t.Errorf("raw config not preserved: %s", cfg.Raw)
	}
}

func TestQuestionConfigMarshalFlat(t *testing.T) {
	cfg := QuestionConfig{Multi: &MultiConfig{AllowMultiple: true}}
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"allow_multiple":true}` {
		t.Errorf("unexpected encoding: %s", data)
	}

	empty, err := json.Marshal(QuestionConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(empty) != "{}" {
		t.Errorf("empty config must encode as {}, got %s", empty)
	}
}

func TestQuestionConfigEncodeEmptyIsNil(t *testing.T) {
	data, err := QuestionConfig{}.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != nil {
		t.Errorf("empty config must persist as NULL, got %s", data)
	}
}
