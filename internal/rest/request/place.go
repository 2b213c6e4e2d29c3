package request

import "github.com/Guyuepp/placevote/domain"

type Candidate struct {
	Name     string `json:"name" binding:"required,max=255"`
	City     string `json:"city" binding:"max=128"`
	District string `json:"district" binding:"max=128"`
}

// ToDomain: Request -> Domain
func (r *Candidate) ToDomain() domain.Candidate {
	return domain.Candidate{
		Name:     r.Name,
		City:     r.City,
		District: r.District,
	}
}

type Place struct {
	Candidate
	Category string `json:"category" binding:"max=64"`
}

type Collection struct {
	Title    string `json:"title" binding:"required,max=255"`
	City     string `json:"city" binding:"max=128"`
	Category string `json:"category" binding:"max=64"`
}

// ToDomain: Request -> Domain
func (r *Collection) ToDomain() domain.NewCollection {
	return domain.NewCollection{
		Title:    r.Title,
		City:     r.City,
		Category: r.Category,
	}
}
