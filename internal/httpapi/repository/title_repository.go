package repository

import (
	"context"

	"gorm.io/gorm"

	"reviewhub/internal/httpapi/models"
)

// TitleFilter holds the supported equality/substring filters for listing.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         *int
}

type TitleRepository interface {
	Create(ctx context.Context, title *models.Title) error
	Update(ctx context.Context, title *models.Title) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, filter TitleFilter) ([]models.Title, error)
	ReplaceGenres(ctx context.Context, title *models.Title, genres []models.Genre) error
	AverageRating(ctx context.Context, titleID int64) (*float64, error)
	AverageRatings(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, title *models.Title) error {
	return r.db.WithContext(ctx).Create(title).Error
}

func (r *titleRepository) Update(ctx context.Context, title *models.Title) error {
	// Save would also rewrite associations; scope the update to the row.
	return r.db.WithContext(ctx).Model(title).
		Select("Name", "Year", "Description", "CategoryID").
		Updates(title).Error
}

// Delete cascades reviews and their comments inside one transaction.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"review_id IN (?)",
			tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Title{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *titleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	var title models.Title
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		First(&title, id).Error
	if err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter) ([]models.Title, error) {
	var titles []models.Title
	q := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		Order("titles.id")

	if filter.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.GenreSlug != "" {
		q = q.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", filter.GenreSlug)
	}
	if filter.Name != "" {
		q = q.Where("titles.name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != nil {
		q = q.Where("titles.year = ?", *filter.Year)
	}

	if err := q.Find(&titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

// ReplaceGenres swaps the title's full association set; callers pass the
// complete new set, never a delta.
func (r *titleRepository) ReplaceGenres(ctx context.Context, title *models.Title, genres []models.Genre) error {
	if err := r.db.WithContext(ctx).Model(title).Association("Genres").Replace(genres); err != nil {
		return err
	}
	title.Genres = genres
	return nil
}

// AverageRating computes the title's mean review score per query. Returns
// nil when no reviews exist.
func (r *titleRepository) AverageRating(ctx context.Context, titleID int64) (*float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(score)").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	return avg, nil
}

// AverageRatings computes means for a batch of titles in one grouped
// query; absent keys mean the title has no reviews.
func (r *titleRepository) AverageRatings(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	ratings := make(map[int64]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return ratings, nil
	}
	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, AVG(score) as average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ratings[row.TitleID] = row.Average
	}
	return ratings, nil
}
