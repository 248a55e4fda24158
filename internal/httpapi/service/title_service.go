package service

import (
	"context"
	"fmt"
	"time"

	"reviewhub/internal/apperr"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/permissions"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter) ([]dto.TitleResponse, error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, actor permissions.Actor, req dto.TitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, actor permissions.Actor, id int64, req dto.TitleUpdateRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

// List computes each title's rating per query; it is never read from the
// row.
func (s *titleService) List(ctx context.Context, filter repository.TitleFilter) ([]dto.TitleResponse, error) {
	titles, err := s.titleRepo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	ratings, err := s.titleRepo.AverageRatings(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := make([]dto.TitleResponse, 0, len(titles))
	for _, t := range titles {
		var rating *float64
		if avg, ok := ratings[t.ID]; ok {
			avg := avg
			rating = &avg
		}
		resp = append(resp, dto.TitleFromModel(t, rating))
	}
	return resp, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.findTitle(ctx, id)
	if err != nil {
		return nil, err
	}
	rating, err := s.titleRepo.AverageRating(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := dto.TitleFromModel(*title, rating)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, actor permissions.Actor, req dto.TitleRequest) (*dto.TitleResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbCreate, permissions.DomainCatalog, false); err != nil {
		return nil, err
	}
	if err := validateYear(req.Year); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}
	if req.Category != nil && *req.Category != "" {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}
	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}
	title.Genres = genres

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, apperr.Internal(err)
	}
	resp := dto.TitleFromModel(*title, nil)
	return &resp, nil
}

// Update applies only supplied fields; a supplied genre list replaces the
// full association set rather than merging into it.
func (s *titleService) Update(ctx context.Context, actor permissions.Actor, id int64, req dto.TitleUpdateRequest) (*dto.TitleResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbUpdate, permissions.DomainCatalog, false); err != nil {
		return nil, err
	}
	title, err := s.findTitle(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := validateYear(*req.Year); err != nil {
			return nil, err
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if req.Category != nil {
		if *req.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.resolveCategory(ctx, *req.Category)
			if err != nil {
				return nil, err
			}
			title.CategoryID = &category.ID
			title.Category = category
		}
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, apperr.Internal(err)
	}
	if req.Genre != nil {
		genres, err := s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	rating, err := s.titleRepo.AverageRating(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := dto.TitleFromModel(*title, rating)
	return &resp, nil
}

func (s *titleService) Delete(ctx context.Context, actor permissions.Actor, id int64) error {
	if err := permissions.Allow(actor, permissions.VerbDelete, permissions.DomainCatalog, false); err != nil {
		return err
	}
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("title not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *titleService) findTitle(ctx context.Context, id int64) (*models.Title, error) {
	title, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("title not found")
		}
		return nil, apperr.Internal(err)
	}
	return title, nil
}

// resolveCategory turns a slug reference into the category row; an
// unresolvable slug is a validation error, never silently dropped.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.Validation("category", fmt.Sprintf("category %q does not exist", slug))
		}
		return nil, apperr.Internal(err)
	}
	return category, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	genres, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(genres) != len(slugs) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		for _, slug := range slugs {
			if !found[slug] {
				return nil, apperr.Validation("genre", fmt.Sprintf("genre %q does not exist", slug))
			}
		}
	}
	return genres, nil
}

func validateYear(year int) error {
	current := time.Now().Year()
	if year > current {
		return apperr.Validation("year", fmt.Sprintf("year %d is after the current year %d", year, current))
	}
	return nil
}
