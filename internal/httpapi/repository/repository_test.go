package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reviewhub/database"
	"reviewhub/internal/httpapi/models"
)

// newTestDB opens a fresh named in-memory database per test so suites
// never share state. TranslateError matches the production setup, which
// is what the unique-violation tests exercise.
func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedTitle(t *testing.T, db *gorm.DB, name string, year int) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: year}
	if err := db.Create(title).Error; err != nil {
		t.Fatalf("seed title: %v", err)
	}
	return title
}

func seedReview(t *testing.T, db *gorm.DB, title *models.Title, author *models.User, score int) *models.Review {
	t.Helper()
	review := &models.Review{
		TitleID:  title.ID,
		AuthorID: author.ID,
		Text:     "some thoughts",
		Score:    score,
	}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return review
}

func TestReviewCreate_DuplicateAuthorTitle(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "reviewer")
	title := seedTitle(t, db, "Dune", 1965)

	first := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "great", Score: 9}
	assert.NoError(t, repo.Create(ctx, first))

	dup := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "again", Score: 5}
	err := repo.Create(ctx, dup)
	assert.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	// A second review for a different title by the same author is fine.
	other := seedTitle(t, db, "Hyperion", 1989)
	assert.NoError(t, repo.Create(ctx, &models.Review{
		TitleID: other.ID, AuthorID: author.ID, Text: "also great", Score: 10,
	}))
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, &models.User{
		Username: "taken", Email: "a@example.com", Role: models.RoleUser,
	}))
	err := repo.Create(ctx, &models.User{
		Username: "taken", Email: "b@example.com", Role: models.RoleUser,
	})
	assert.True(t, IsUniqueViolation(err))
}

func TestAverageRating(t *testing.T) {
	db := newTestDB(t)
	repo := NewTitleRepository(db)
	ctx := context.Background()

	title := seedTitle(t, db, "Dune", 1965)
	seedReview(t, db, title, seedUser(t, db, "alice"), 8)
	seedReview(t, db, title, seedUser(t, db, "bob"), 10)

	avg, err := repo.AverageRating(ctx, title.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, avg) {
		assert.InDelta(t, 9.0, *avg, 0.001)
	}

	// A title with no reviews has no rating at all.
	bare := seedTitle(t, db, "Hyperion", 1989)
	avg, err = repo.AverageRating(ctx, bare.ID)
	assert.NoError(t, err)
	assert.Nil(t, avg)
}

func TestAverageRatings_Batch(t *testing.T) {
	db := newTestDB(t)
	repo := NewTitleRepository(db)
	ctx := context.Background()

	rated := seedTitle(t, db, "Dune", 1965)
	bare := seedTitle(t, db, "Hyperion", 1989)
	seedReview(t, db, rated, seedUser(t, db, "alice"), 7)

	ratings, err := repo.AverageRatings(ctx, []int64{rated.ID, bare.ID})
	assert.NoError(t, err)
	assert.Len(t, ratings, 1)
	assert.InDelta(t, 7.0, ratings[rated.ID], 0.001)
	_, ok := ratings[bare.ID]
	assert.False(t, ok)
}

func TestTitleDelete_CascadesReviewsAndComments(t *testing.T) {
	db := newTestDB(t)
	repo := NewTitleRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	title := seedTitle(t, db, "Dune", 1965)
	review := seedReview(t, db, title, author, 8)
	comment := &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "agreed"}
	assert.NoError(t, db.Create(comment).Error)

	assert.NoError(t, repo.Delete(ctx, title.ID))

	var reviews, comments int64
	db.Model(&models.Review{}).Where("title_id = ?", title.ID).Count(&reviews)
	db.Model(&models.Comment{}).Where("review_id = ?", review.ID).Count(&comments)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)
}

func TestTitleDelete_Missing(t *testing.T) {
	db := newTestDB(t)
	repo := NewTitleRepository(db)

	err := repo.Delete(context.Background(), 999)
	assert.True(t, IsNotFound(err))
}

func TestCategoryDelete_DetachesTitles(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	category := &models.Category{Name: "Books", Slug: "books"}
	assert.NoError(t, db.Create(category).Error)
	title := &models.Title{Name: "Dune", Year: 1965, CategoryID: &category.ID}
	assert.NoError(t, db.Create(title).Error)

	assert.NoError(t, repo.DeleteBySlug(ctx, "books"))

	var reloaded models.Title
	assert.NoError(t, db.First(&reloaded, title.ID).Error)
	assert.Nil(t, reloaded.CategoryID)
}

func TestGenreDelete_RemovesLinksKeepsTitles(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenreRepository(db)
	ctx := context.Background()

	genre := &models.Genre{Name: "Sci-Fi", Slug: "sci-fi"}
	assert.NoError(t, db.Create(genre).Error)
	title := seedTitle(t, db, "Dune", 1965)
	assert.NoError(t, db.Create(&models.TitleGenre{TitleID: title.ID, GenreID: genre.ID}).Error)

	assert.NoError(t, repo.DeleteBySlug(ctx, "sci-fi"))

	var links int64
	db.Model(&models.TitleGenre{}).Where("genre_id = ?", genre.ID).Count(&links)
	assert.Zero(t, links)

	var reloaded models.Title
	assert.NoError(t, db.First(&reloaded, title.ID).Error)
}

func TestUserDelete_CascadesContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	title := seedTitle(t, db, "Dune", 1965)
	seedReview(t, db, title, author, 8)
	otherReview := seedReview(t, db, title, other, 6)
	assert.NoError(t, db.Create(&models.Comment{
		ReviewID: otherReview.ID, AuthorID: author.ID, Text: "disagree",
	}).Error)

	assert.NoError(t, repo.Delete(ctx, author))

	var reviews, comments int64
	db.Model(&models.Review{}).Where("author_id = ?", author.ID).Count(&reviews)
	db.Model(&models.Comment{}).Where("author_id = ?", author.ID).Count(&comments)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)

	// The deleted user's review is gone but bob's survives.
	var remaining int64
	db.Model(&models.Review{}).Where("title_id = ?", title.ID).Count(&remaining)
	assert.Equal(t, int64(1), remaining)
}

func TestReviewFindByTitleAndID_WrongTitle(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	title := seedTitle(t, db, "Dune", 1965)
	other := seedTitle(t, db, "Hyperion", 1989)
	review := seedReview(t, db, title, author, 8)

	found, err := repo.FindByTitleAndID(ctx, title.ID, review.ID)
	assert.NoError(t, err)
	assert.Equal(t, review.ID, found.ID)

	_, err = repo.FindByTitleAndID(ctx, other.ID, review.ID)
	assert.True(t, IsNotFound(err))
}

func TestTitleList_Filters(t *testing.T) {
	db := newTestDB(t)
	repo := NewTitleRepository(db)
	ctx := context.Background()

	category := &models.Category{Name: "Books", Slug: "books"}
	assert.NoError(t, db.Create(category).Error)
	genre := &models.Genre{Name: "Sci-Fi", Slug: "sci-fi"}
	assert.NoError(t, db.Create(genre).Error)

	dune := &models.Title{Name: "Dune", Year: 1965, CategoryID: &category.ID}
	assert.NoError(t, db.Create(dune).Error)
	assert.NoError(t, db.Create(&models.TitleGenre{TitleID: dune.ID, GenreID: genre.ID}).Error)
	seedTitle(t, db, "Hyperion", 1989)

	byCategory, err := repo.List(ctx, TitleFilter{CategorySlug: "books"})
	assert.NoError(t, err)
	if assert.Len(t, byCategory, 1) {
		assert.Equal(t, "Dune", byCategory[0].Name)
	}

	byGenre, err := repo.List(ctx, TitleFilter{GenreSlug: "sci-fi"})
	assert.NoError(t, err)
	assert.Len(t, byGenre, 1)

	year := 1989
	byYear, err := repo.List(ctx, TitleFilter{Year: &year})
	assert.NoError(t, err)
	if assert.Len(t, byYear, 1) {
		assert.Equal(t, "Hyperion", byYear[0].Name)
	}

	byName, err := repo.List(ctx, TitleFilter{Name: "yper"})
	assert.NoError(t, err)
	assert.Len(t, byName, 1)

	all, err := repo.List(ctx, TitleFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}
