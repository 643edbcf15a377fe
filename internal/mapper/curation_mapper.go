package mapper

import (
	"vibe-curation-be/internal/dto"
	"vibe-curation-be/pkg/store"
)

func ToItemResponse(item store.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:             item.ID,
		Title:          item.Title,
		Thumbnail:      item.Thumbnail,
		URL:            item.URL,
		Creator:        item.Creator,
		CreatorURL:     item.CreatorURL,
		License:        item.License,
		LicenseVersion: item.LicenseVersion,
		Source:         item.Source,
	}
}

// ToSessionState snapshots a session for clients. Callers must hold the
// session lock; the returned value shares nothing with the session.
func ToSessionState(s *store.Session) *dto.SessionStateResponse {
	visible := make([]dto.ItemResponse, 0, len(s.Visible))
	for _, item := range s.Visible {
		visible = append(visible, ToItemResponse(item))
	}
	kept := make([]dto.ItemResponse, 0, len(s.Kept))
	for _, item := range s.Kept {
		kept = append(kept, ToItemResponse(item))
	}
	return &dto.SessionStateResponse{
		ID:          s.ID,
		VisibleText: s.VisibleText,
		Visible:     visible,
		Kept:        kept,
		QueueDepth:  len(s.Queue),
		Loading:     s.Loading,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
	}
}
