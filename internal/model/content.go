package model

// ContentPage is a per-language static page (imprint, privacy, about).
type ContentPage struct {
	PageKey string `json:"page_key"`
	Lang    string `json:"lang"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

// UpsertContentPageRequest creates or updates a content page.
type UpsertContentPageRequest struct {
	PageKey string `json:"page_key" binding:"required,max=64"`
	Lang    string `json:"lang" binding:"required,max=8"`
	Title   string `json:"title" binding:"required,max=128"`
	Body    string `json:"body" binding:"required"`
}
