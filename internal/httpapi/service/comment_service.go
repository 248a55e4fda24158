package service

import (
	"context"

	"reviewhub/internal/apperr"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/permissions"
)

type CommentService interface {
	ListByReview(ctx context.Context, titleID, reviewID int64) ([]dto.CommentResponse, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, actor permissions.Actor, titleID, reviewID int64, req dto.CommentRequest) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor permissions.Actor, titleID, reviewID, commentID int64, req dto.CommentUpdateRequest) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

func (s *commentService) ListByReview(ctx context.Context, titleID, reviewID int64) ([]dto.CommentResponse, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByReview(ctx, reviewID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, dto.CommentFromModel(c))
	}
	return resp, nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	resp := dto.CommentFromModel(*comment)
	return &resp, nil
}

// Create requires the (title, review) pairing in the route to resolve; a
// review reached through the wrong title reads as not found.
func (s *commentService) Create(ctx context.Context, actor permissions.Actor, titleID, reviewID int64, req dto.CommentRequest) (*dto.CommentResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbCreate, permissions.DomainContent, false); err != nil {
		return nil, err
	}
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     req.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, apperr.Internal(err)
	}
	created, err := s.commentRepo.FindByReviewAndID(ctx, reviewID, comment.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := dto.CommentFromModel(*created)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, actor permissions.Actor, titleID, reviewID, commentID int64, req dto.CommentUpdateRequest) (*dto.CommentResponse, error) {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	owned := actor.Authenticated && comment.AuthorID == actor.ID
	if err := permissions.Allow(actor, permissions.VerbUpdate, permissions.DomainContent, owned); err != nil {
		return nil, err
	}
	if req.Text != nil {
		comment.Text = *req.Text
	}
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, apperr.Internal(err)
	}
	resp := dto.CommentFromModel(*comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, actor permissions.Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	owned := actor.Authenticated && comment.AuthorID == actor.ID
	if err := permissions.Allow(actor, permissions.VerbDelete, permissions.DomainContent, owned); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, comment); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *commentService) ensureReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviewRepo.FindByTitleAndID(ctx, titleID, reviewID); err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("review not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *commentService) findComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.FindByReviewAndID(ctx, reviewID, commentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, apperr.Internal(err)
	}
	return comment, nil
}
