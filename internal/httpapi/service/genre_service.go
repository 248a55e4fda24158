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

type GenreService interface {
	List(ctx context.Context, search string) ([]dto.GenreResponse, error)
	Get(ctx context.Context, slug string) (*dto.GenreResponse, error)
	Create(ctx context.Context, actor permissions.Actor, req dto.GenreRequest) (*dto.GenreResponse, error)
	Update(ctx context.Context, actor permissions.Actor, slug string, req dto.GenreRequest) (*dto.GenreResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, slug string) error
}

type genreService struct {
	genreRepo repository.GenreRepository
}

func NewGenreService(genreRepo repository.GenreRepository) GenreService {
	return &genreService{genreRepo: genreRepo}
}

func (s *genreService) List(ctx context.Context, search string) ([]dto.GenreResponse, error) {
	genres, err := s.genreRepo.List(ctx, search)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := make([]dto.GenreResponse, 0, len(genres))
	for _, g := range genres {
		resp = append(resp, dto.GenreFromModel(g))
	}
	return resp, nil
}

func (s *genreService) Get(ctx context.Context, slug string) (*dto.GenreResponse, error) {
	genre, err := s.genreRepo.FindBySlug(ctx, slug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound(fmt.Sprintf("genre %q not found", slug))
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

func (s *genreService) Create(ctx context.Context, actor permissions.Actor, req dto.GenreRequest) (*dto.GenreResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbCreate, permissions.DomainCatalog, false); err != nil {
		return nil, err
	}
	genre := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("slug", fmt.Sprintf("genre slug %q already exists", req.Slug))
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

func (s *genreService) Update(ctx context.Context, actor permissions.Actor, slug string, req dto.GenreRequest) (*dto.GenreResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbUpdate, permissions.DomainCatalog, false); err != nil {
		return nil, err
	}
	genre, err := s.genreRepo.FindBySlug(ctx, slug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound(fmt.Sprintf("genre %q not found", slug))
		}
		return nil, apperr.Internal(err)
	}
	genre.Name = req.Name
	genre.Slug = req.Slug
	if err := s.genreRepo.Update(ctx, genre); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("slug", fmt.Sprintf("genre slug %q already exists", req.Slug))
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, actor permissions.Actor, slug string) error {
	if err := permissions.Allow(actor, permissions.VerbDelete, permissions.DomainCatalog, false); err != nil {
		return err
	}
	if err := s.genreRepo.DeleteBySlug(ctx, slug); err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound(fmt.Sprintf("genre %q not found", slug))
		}
		return apperr.Internal(err)
	}
	return nil
}
