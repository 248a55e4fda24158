package dto

import "reviewhub/internal/httpapi/models"

// GenreRequest for POST /v1/genres; name is optional
type GenreRequest struct {
	Name string `json:"name" binding:"max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func GenreFromModel(g models.Genre) GenreResponse {
	return GenreResponse{
		Name: g.Name,
		Slug: g.Slug,
	}
}
