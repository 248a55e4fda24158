package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/gorm"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/pkg/logger"
)

// Loads the seven fixture files (users, category, genre, titles,
// genre_title, review, comments) from a data directory into the
// database. Files reference each other by their own csv ids, so each
// pass records a csv-id to database-id map for the next one.
func main() {
	log.Println("Starting fixture import...")

	dataDir := "data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logg, err := logger.New(cfg.GoEnv)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logg.Sync()

	db, err := database.ConnectDB(cfg, logg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		users, err := importUsers(tx, filepath.Join(dataDir, "users.csv"))
		if err != nil {
			return fmt.Errorf("users: %w", err)
		}
		log.Printf("Imported %d users", len(users))

		categories, err := importCategories(tx, filepath.Join(dataDir, "category.csv"))
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		log.Printf("Imported %d categories", len(categories))

		genres, err := importGenres(tx, filepath.Join(dataDir, "genre.csv"))
		if err != nil {
			return fmt.Errorf("genres: %w", err)
		}
		log.Printf("Imported %d genres", len(genres))

		titles, err := importTitles(tx, filepath.Join(dataDir, "titles.csv"), categories)
		if err != nil {
			return fmt.Errorf("titles: %w", err)
		}
		log.Printf("Imported %d titles", len(titles))

		links, err := importTitleGenres(tx, filepath.Join(dataDir, "genre_title.csv"), titles, genres)
		if err != nil {
			return fmt.Errorf("title genres: %w", err)
		}
		log.Printf("Linked %d title-genre pairs", links)

		reviews, err := importReviews(tx, filepath.Join(dataDir, "review.csv"), titles, users)
		if err != nil {
			return fmt.Errorf("reviews: %w", err)
		}
		log.Printf("Imported %d reviews", len(reviews))

		comments, err := importComments(tx, filepath.Join(dataDir, "comments.csv"), reviews, users)
		if err != nil {
			return fmt.Errorf("comments: %w", err)
		}
		log.Printf("Imported %d comments", comments)
		return nil
	})
	if err != nil {
		log.Fatalf("Import failed, rolled back: %v", err)
	}
	log.Println("Fixture import completed successfully")
}

// rows reads a csv file and calls fn for every non-header record,
// passing values keyed by column name.
func rows(path string, fn func(rec map[string]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				rec[col] = record[i]
			}
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

func importUsers(tx *gorm.DB, path string) (map[string]string, error) {
	ids := make(map[string]string)
	err := rows(path, func(rec map[string]string) error {
		user := &models.User{
			Username:  rec["username"],
			Email:     rec["email"],
			Bio:       rec["bio"],
			FirstName: rec["first_name"],
			LastName:  rec["last_name"],
		}
		role := rec["role"]
		if role == "" {
			role = models.RoleUser
		}
		if err := user.SetRole(role); err != nil {
			return fmt.Errorf("user %s: %w", rec["username"], err)
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		ids[rec["id"]] = user.ID
		return nil
	})
	return ids, err
}

func importCategories(tx *gorm.DB, path string) (map[string]int64, error) {
	ids := make(map[string]int64)
	err := rows(path, func(rec map[string]string) error {
		category := &models.Category{Name: rec["name"], Slug: rec["slug"]}
		if err := tx.Create(category).Error; err != nil {
			return err
		}
		ids[rec["id"]] = category.ID
		return nil
	})
	return ids, err
}

func importGenres(tx *gorm.DB, path string) (map[string]int64, error) {
	ids := make(map[string]int64)
	err := rows(path, func(rec map[string]string) error {
		genre := &models.Genre{Name: rec["name"], Slug: rec["slug"]}
		if err := tx.Create(genre).Error; err != nil {
			return err
		}
		ids[rec["id"]] = genre.ID
		return nil
	})
	return ids, err
}

func importTitles(tx *gorm.DB, path string, categories map[string]int64) (map[string]int64, error) {
	ids := make(map[string]int64)
	err := rows(path, func(rec map[string]string) error {
		year, err := strconv.Atoi(rec["year"])
		if err != nil {
			return fmt.Errorf("title %s: bad year %q", rec["name"], rec["year"])
		}
		title := &models.Title{
			Name:        rec["name"],
			Year:        year,
			Description: rec["description"],
		}
		if csvCat := rec["category"]; csvCat != "" {
			catID, ok := categories[csvCat]
			if !ok {
				return fmt.Errorf("title %s: unknown category id %s", rec["name"], csvCat)
			}
			title.CategoryID = &catID
		}
		if err := tx.Create(title).Error; err != nil {
			return err
		}
		ids[rec["id"]] = title.ID
		return nil
	})
	return ids, err
}

func importTitleGenres(tx *gorm.DB, path string, titles, genres map[string]int64) (int, error) {
	count := 0
	err := rows(path, func(rec map[string]string) error {
		titleID, ok := titles[rec["title_id"]]
		if !ok {
			return fmt.Errorf("unknown title id %s", rec["title_id"])
		}
		genreID, ok := genres[rec["genre_id"]]
		if !ok {
			return fmt.Errorf("unknown genre id %s", rec["genre_id"])
		}
		link := &models.TitleGenre{TitleID: titleID, GenreID: genreID}
		if err := tx.Create(link).Error; err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func importReviews(tx *gorm.DB, path string, titles map[string]int64, users map[string]string) (map[string]int64, error) {
	ids := make(map[string]int64)
	err := rows(path, func(rec map[string]string) error {
		titleID, ok := titles[rec["title_id"]]
		if !ok {
			return fmt.Errorf("unknown title id %s", rec["title_id"])
		}
		authorID, ok := users[rec["author"]]
		if !ok {
			return fmt.Errorf("unknown author id %s", rec["author"])
		}
		score, err := strconv.Atoi(rec["score"])
		if err != nil {
			return fmt.Errorf("review %s: bad score %q", rec["id"], rec["score"])
		}
		review := &models.Review{
			TitleID:  titleID,
			AuthorID: authorID,
			Text:     rec["text"],
			Score:    score,
			PubDate:  parseTime(rec["pub_date"]),
		}
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		ids[rec["id"]] = review.ID
		return nil
	})
	return ids, err
}

func importComments(tx *gorm.DB, path string, reviews map[string]int64, users map[string]string) (int, error) {
	count := 0
	err := rows(path, func(rec map[string]string) error {
		reviewID, ok := reviews[rec["review_id"]]
		if !ok {
			return fmt.Errorf("unknown review id %s", rec["review_id"])
		}
		authorID, ok := users[rec["author"]]
		if !ok {
			return fmt.Errorf("unknown author id %s", rec["author"])
		}
		comment := &models.Comment{
			ReviewID: reviewID,
			AuthorID: authorID,
			Text:     rec["text"],
			PubDate:  parseTime(rec["pub_date"]),
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// Fixture timestamps come in RFC3339 with fractional seconds; anything
// unparseable falls back to now so the import never aborts on it.
func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
