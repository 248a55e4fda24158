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

type CategoryService interface {
	List(ctx context.Context, search string) ([]dto.CategoryResponse, error)
	Get(ctx context.Context, slug string) (*dto.CategoryResponse, error)
	Create(ctx context.Context, actor permissions.Actor, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	Update(ctx context.Context, actor permissions.Actor, slug string, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, slug string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) List(ctx context.Context, search string) ([]dto.CategoryResponse, error) {
	categories, err := s.categoryRepo.List(ctx, search)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, dto.CategoryFromModel(c))
	}
	return resp, nil
}

func (s *categoryService) Get(ctx context.Context, slug string) (*dto.CategoryResponse, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound(fmt.Sprintf("category %q not found", slug))
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.CategoryFromModel(*category)
	return &resp, nil
}

func (s *categoryService) Create(ctx context.Context, actor permissions.Actor, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbCreate, permissions.DomainCatalog, false); err != nil {
		return nil, err
	}
	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("slug", fmt.Sprintf("category slug %q already exists", req.Slug))
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.CategoryFromModel(*category)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, actor permissions.Actor, slug string, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbUpdate, permissions.DomainCatalog, false); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound(fmt.Sprintf("category %q not found", slug))
		}
		return nil, apperr.Internal(err)
	}
	category.Name = req.Name
	category.Slug = req.Slug
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("slug", fmt.Sprintf("category slug %q already exists", req.Slug))
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.CategoryFromModel(*category)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, actor permissions.Actor, slug string) error {
	if err := permissions.Allow(actor, permissions.VerbDelete, permissions.DomainCatalog, false); err != nil {
		return err
	}
	if err := s.categoryRepo.DeleteBySlug(ctx, slug); err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound(fmt.Sprintf("category %q not found", slug))
		}
		return apperr.Internal(err)
	}
	return nil
}
