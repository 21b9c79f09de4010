package model

// SlotMode determines how a slot picks questions at resolution time.
type SlotMode string

const (
	// SlotModeFixed always selects the single assigned question.
	SlotModeFixed SlotMode = "fixed"
	// SlotModePool draws a random subset of the assigned questions.
	SlotModePool SlotMode = "pool"
)

// Questionnaire is a named, keyed sequence of slots.
type Questionnaire struct {
	ID          int    `json:"id"`
	Key         string `json:"questionnaire_key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default"`
	IsActive    bool   `json:"is_active"`
	SlotCount   int    `json:"slot_count"`
}

// Slot is one ordered position of a questionnaire together with its
// assigned candidate question keys.
type Slot struct {
	ID              int      `json:"id"`
	QuestionnaireID int      `json:"questionnaire_id"`
	Sort            int      `json:"sort"`
	Mode            SlotMode `json:"mode"`
	PoolCount       int      `json:"pool_count"`
	Required        bool     `json:"required"`
	Questions       []string `json:"questions"`
}

// UpsertQuestionnaireRequest creates a questionnaire, or updates one when
// ID is set.
type UpsertQuestionnaireRequest struct {
	ID               int    `json:"id"`
	QuestionnaireKey string `json:"questionnaire_key" binding:"max=64"`
	Name             string `json:"name" binding:"max=128"`
	Description      string `json:"description"`
	IsActive         *bool  `json:"is_active"`
}

// SlotInput is one slot record of a full-replace save.
type SlotInput struct {
	Sort      int      `json:"sort" binding:"min=0"`
	Mode      string   `json:"mode" binding:"omitempty,oneof=fixed pool"`
	PoolCount int      `json:"pool_count" binding:"min=0"`
	Required  bool     `json:"required"`
	Questions []string `json:"questions"`
}

// SaveSlotsRequest replaces every slot of a questionnaire.
type SaveSlotsRequest struct {
	Slots []SlotInput `json:"slots" binding:"dive"`
}
