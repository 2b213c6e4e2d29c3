package request

import "github.com/Guyuepp/placevote/domain"

type Vote struct {
	TargetID   int64  `json:"target_id" binding:"required,gt=0"`
	TargetKind string `json:"target_kind" binding:"required"`
	Direction  string `json:"direction" binding:"required"`
}

// ToDomain: Request -> Domain
func (r *Vote) ToDomain() (domain.TargetRef, domain.Direction, error) {
	kind, err := domain.ParseTargetKind(r.TargetKind)
	if err != nil {
		return domain.TargetRef{}, 0, err
	}
	d, err := domain.ParseDirection(r.Direction)
	if err != nil {
		return domain.TargetRef{}, 0, err
	}
	return domain.TargetRef{Kind: kind, ID: r.TargetID}, d, nil
}
