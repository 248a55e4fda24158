package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reviewhub/database"
	"reviewhub/internal/apperr"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/permissions"
)

type titleFixture struct {
	svc   TitleService
	db    *gorm.DB
	admin permissions.Actor
}

func newTitleFixture(t *testing.T) *titleFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return &titleFixture{
		db: db,
		svc: NewTitleService(
			repository.NewTitleRepository(db),
			repository.NewCategoryRepository(db),
			repository.NewGenreRepository(db),
		),
		admin: permissions.Actor{ID: "admin-1", Username: "root", Role: models.RoleAdmin, Authenticated: true},
	}
}

func (f *titleFixture) seedCatalog(t *testing.T) {
	t.Helper()
	assert.NoError(t, f.db.Create(&models.Category{Name: "Books", Slug: "books"}).Error)
	assert.NoError(t, f.db.Create(&models.Genre{Name: "Sci-Fi", Slug: "sci-fi"}).Error)
	assert.NoError(t, f.db.Create(&models.Genre{Name: "Drama", Slug: "drama"}).Error)
}

func strptr(s string) *string { return &s }

func TestTitleCreate_ResolvesSlugs(t *testing.T) {
	f := newTitleFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.admin, dto.TitleRequest{
		Name:     "Dune",
		Year:     1965,
		Category: strptr("books"),
		Genre:    []string{"sci-fi", "drama"},
	})
	assert.NoError(t, err)
	if assert.NotNil(t, created.Category) {
		assert.Equal(t, "books", created.Category.Slug)
	}
	assert.Len(t, created.Genre, 2)
	assert.Nil(t, created.Rating)
}

func TestTitleCreate_UnknownCategory(t *testing.T) {
	f := newTitleFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin, dto.TitleRequest{
		Name:     "Dune",
		Year:     1965,
		Category: strptr("missing"),
	})
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Contains(t, ae.Fields, "category")
	}
}

func TestTitleCreate_UnknownGenre(t *testing.T) {
	f := newTitleFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin, dto.TitleRequest{
		Name:  "Dune",
		Year:  1965,
		Genre: []string{"sci-fi", "missing"},
	})
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Contains(t, ae.Fields, "genre")
	}
}

func TestTitleCreate_FutureYear(t *testing.T) {
	f := newTitleFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin, dto.TitleRequest{
		Name: "Unreleased",
		Year: time.Now().Year() + 1,
	})
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Contains(t, ae.Fields, "year")
	}

	// The current year itself is allowed.
	_, err = f.svc.Create(ctx, f.admin, dto.TitleRequest{
		Name: "Just Released",
		Year: time.Now().Year(),
	})
	assert.NoError(t, err)
}

func TestTitleUpdate_ReplacesGenres(t *testing.T) {
	f := newTitleFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.admin, dto.TitleRequest{
		Name:  "Dune",
		Year:  1965,
		Genre: []string{"sci-fi"},
	})
	assert.NoError(t, err)

	newGenres := []string{"drama"}
	updated, err := f.svc.Update(ctx, f.admin, created.ID, dto.TitleUpdateRequest{Genre: &newGenres})
	assert.NoError(t, err)
	if assert.Len(t, updated.Genre, 1) {
		assert.Equal(t, "drama", updated.Genre[0].Slug)
	}
}

func TestTitleUpdate_DetachCategory(t *testing.T) {
	f := newTitleFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.admin, dto.TitleRequest{
		Name:     "Dune",
		Year:     1965,
		Category: strptr("books"),
	})
	assert.NoError(t, err)

	// An explicit empty category clears the association.
	updated, err := f.svc.Update(ctx, f.admin, created.ID, dto.TitleUpdateRequest{Category: strptr("")})
	assert.NoError(t, err)
	assert.Nil(t, updated.Category)
}

func TestTitleGet_IncludesRating(t *testing.T) {
	f := newTitleFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.admin, dto.TitleRequest{Name: "Dune", Year: 1965})
	assert.NoError(t, err)

	author := &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	assert.NoError(t, f.db.Create(author).Error)
	assert.NoError(t, f.db.Create(&models.Review{
		TitleID: created.ID, AuthorID: author.ID, Score: 8,
	}).Error)

	got, err := f.svc.Get(ctx, created.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, got.Rating) {
		assert.InDelta(t, 8.0, *got.Rating, 0.001)
	}
}

func TestTitleDelete_NotFound(t *testing.T) {
	f := newTitleFixture(t)

	err := f.svc.Delete(context.Background(), f.admin, 999)
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindNotFound, ae.Kind)
	}
}
