package model

// Vec3 is a point in the 3D floor-plan scene.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Station is a physical QR-code location mapping to a questionnaire and a
// camera position on the 3D floor plan.
type Station struct {
	ID                int    `json:"id"`
	Key               string `json:"station_key"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	FloorIndex        int    `json:"floor_index"`
	Camera            Vec3   `json:"camera"`
	Target            Vec3   `json:"target"`
	QuestionnaireID   *int   `json:"questionnaire_id,omitempty"`
	QuestionnaireKey  string `json:"questionnaire_key,omitempty"`
	QuestionnaireName string `json:"questionnaire_name,omitempty"`
	IsActive          bool   `json:"is_active"`
}

// PublicStation is the visitor-facing station payload returned by the QR
// lookup. QuestionnaireKey is never empty; unassigned stations fall back to
// the default questionnaire.
type PublicStation struct {
	Key              string `json:"station_key"`
	Name             string `json:"name"`
	FloorIndex       int    `json:"floor_index"`
	Camera           Vec3   `json:"camera"`
	Target           Vec3   `json:"target"`
	QuestionnaireKey string `json:"questionnaire_key"`
}

// UpsertStationRequest creates a station, or updates one when ID is set.
type UpsertStationRequest struct {
	ID              int    `json:"id"`
	StationKey      string `json:"station_key" binding:"max=64"`
	Name            string `json:"name" binding:"max=128"`
	Description     string `json:"description"`
	FloorIndex      int    `json:"floor_index"`
	Camera          Vec3   `json:"camera"`
	Target          Vec3   `json:"target"`
	QuestionnaireID *int   `json:"questionnaire_id"`
	IsActive        *bool  `json:"is_active"`
}
