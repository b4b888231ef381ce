package dto

import (
	"encoding/json"
	"time"

	"contratia/internal/domain/review"
)

// ReviewEntryResponse is one immutable review-ledger entry.
type ReviewEntryResponse struct {
	ID           string          `json:"id"`
	DocumentKind string          `json:"documentKind"`
	DocumentID   string          `json:"documentId"`
	ReviewerID   string          `json:"reviewerId"`
	ReviewerRole string          `json:"reviewerRole"`
	Action       string          `json:"action"`
	Comment      string          `json:"comment,omitempty"`
	Snapshot     json.RawMessage `json:"snapshot,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// FromReviewEntry converts a ledger entry.
func FromReviewEntry(e review.Entry) ReviewEntryResponse {
	return ReviewEntryResponse{
		ID:           e.ID.String(),
		DocumentKind: string(e.DocumentKind),
		DocumentID:   e.DocumentID.String(),
		ReviewerID:   e.ReviewerID,
		ReviewerRole: string(e.ReviewerRole),
		Action:       string(e.Action),
		Comment:      e.Comment,
		Snapshot:     e.Snapshot,
		CreatedAt:    e.CreatedAt,
	}
}

// ReviewLogResponse is the ordered review history of one document.
type ReviewLogResponse struct {
	Items []ReviewEntryResponse `json:"items"`
}

// FromReviewEntries converts a slice of ledger entries.
func FromReviewEntries(entries []review.Entry) ReviewLogResponse {
	items := make([]ReviewEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = FromReviewEntry(e)
	}
	return ReviewLogResponse{Items: items}
}
