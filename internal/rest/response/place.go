package response

import (
	"github.com/Guyuepp/placevote/domain"
)

type Ingest struct {
	TargetID   int64  `json:"target_id"`
	Created    bool   `json:"created"`
	Confidence string `json:"confidence,omitempty"`
}

// FromDomain: Domain -> Response
func NewIngestFromDomain(r domain.IngestResult) Ingest {
	return Ingest{
		TargetID:   r.TargetID,
		Created:    r.Created,
		Confidence: string(r.Confidence),
	}
}

type Collection struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	City      string  `json:"city"`
	Category  string  `json:"category"`
	VoteCount int64   `json:"vote_count"`
	VoteScore float64 `json:"vote_score"`
	CreatedAt string  `json:"created_at"`
}

// FromDomain: Domain -> Response
func NewCollectionFromDomain(c *domain.Collection) Collection {
	return Collection{
		ID:        c.ID,
		Title:     c.Title,
		City:      c.City,
		Category:  c.Category,
		VoteCount: c.VoteCount,
		VoteScore: c.VoteScore.Float64(),
		CreatedAt: c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
