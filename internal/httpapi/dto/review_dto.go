package dto

import (
	"time"

	"reviewhub/internal/httpapi/models"
)

// ReviewRequest for POST /v1/titles/:title_id/reviews
type ReviewRequest struct {
	Text  string `json:"text"`
	Score int    `json:"score" binding:"required"`
}

// ReviewUpdateRequest: partial update by the author or an elevated role
type ReviewUpdateRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	TitleID int64     `json:"title_id"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func ReviewFromModel(r models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Author:  r.Author.Username,
		TitleID: r.TitleID,
		Text:    r.Text,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
