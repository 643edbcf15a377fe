package dto

import "time"

// Curation API DTOs

type StartSessionRequest struct {
	SeedQuery string `json:"seed_query" validate:"required,min=2,max=300"`
}

// SlotActionRequest targets one position of the visible window. Slot is a
// pointer so a missing field fails validation instead of defaulting to 0.
type SlotActionRequest struct {
	Slot *int `json:"slot" validate:"required,min=0"`
}

type AnalyzeRequest struct {
	Text string `json:"text" validate:"required,min=2,max=500"`
}

type ResearchRequest struct {
	Text string `json:"text" validate:"required,min=2,max=300"`
}

type ItemResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Thumbnail      string `json:"thumbnail"`
	URL            string `json:"url"`
	Creator        string `json:"creator"`
	CreatorURL     string `json:"creator_url,omitempty"`
	License        string `json:"license"`
	LicenseVersion string `json:"license_version,omitempty"`
	Source         string `json:"source,omitempty"`
}

// SessionStateResponse is the client-facing session snapshot. The internal
// search query and the seen set are never exposed to clients.
type SessionStateResponse struct {
	ID          string         `json:"id"`
	VisibleText string         `json:"visible_text"`
	Visible     []ItemResponse `json:"visible"`
	Kept        []ItemResponse `json:"kept"`
	QueueDepth  int            `json:"queue_depth"`
	Loading     bool           `json:"loading"`
	Status      string         `json:"status,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
