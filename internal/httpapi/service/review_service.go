package service

import (
	"context"
	"fmt"

	"reviewhub/internal/apperr"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/permissions"
)

type ReviewService interface {
	ListByTitle(ctx context.Context, titleID int64) ([]dto.ReviewResponse, error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor permissions.Actor, titleID int64, req dto.ReviewRequest) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor permissions.Actor, titleID, reviewID int64, req dto.ReviewUpdateRequest) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64) ([]dto.ReviewResponse, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByTitle(ctx, titleID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp = append(resp, dto.ReviewFromModel(r))
	}
	return resp, nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	resp := dto.ReviewFromModel(*review)
	return &resp, nil
}

// Create enforces one review per (author, title). The composite unique
// index is the authority; the conflict is reported whether it is caught
// here or raced in by a concurrent request.
func (s *reviewService) Create(ctx context.Context, actor permissions.Actor, titleID int64, req dto.ReviewRequest) (*dto.ReviewResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbCreate, permissions.DomainContent, false); err != nil {
		return nil, err
	}
	if err := validateScore(req.Score); err != nil {
		return nil, err
	}
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     req.Text,
		Score:    req.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("review", "you have already reviewed this title")
		}
		return nil, apperr.Internal(err)
	}

	// Reload to pick up the author association for the response.
	created, err := s.reviewRepo.FindByTitleAndID(ctx, titleID, review.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := dto.ReviewFromModel(*created)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, actor permissions.Actor, titleID, reviewID int64, req dto.ReviewUpdateRequest) (*dto.ReviewResponse, error) {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	owned := actor.Authenticated && review.AuthorID == actor.ID
	if err := permissions.Allow(actor, permissions.VerbUpdate, permissions.DomainContent, owned); err != nil {
		return nil, err
	}

	if req.Score != nil {
		if err := validateScore(*req.Score); err != nil {
			return nil, err
		}
		review.Score = *req.Score
	}
	if req.Text != nil {
		review.Text = *req.Text
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, apperr.Internal(err)
	}
	resp := dto.ReviewFromModel(*review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, actor permissions.Actor, titleID, reviewID int64) error {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	owned := actor.Authenticated && review.AuthorID == actor.ID
	if err := permissions.Allow(actor, permissions.VerbDelete, permissions.DomainContent, owned); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, review); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *reviewService) ensureTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.FindByID(ctx, titleID); err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("title not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *reviewService) findReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.FindByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("review not found")
		}
		return nil, apperr.Internal(err)
	}
	return review, nil
}

func validateScore(score int) error {
	if score < 1 || score > 10 {
		return apperr.Validation("score", fmt.Sprintf("score must be between 1 and 10, got %d", score))
	}
	return nil
}
