package models

// explicit join model; the composite primary key makes the (title, genre)
// pair unique at the storage level
type TitleGenre struct {
	TitleID int64 `json:"title_id" gorm:"primaryKey;autoIncrement:false"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey;autoIncrement:false"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
