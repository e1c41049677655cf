package model

// Tag labels a recipe. Tags are scoped to the user that created them.
type Tag struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(255);not null"`
	UserID uint   `json:"user_id" gorm:"index;not null"`
	User   User   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Ingredient is used in a recipe. Same ownership rules as Tag.
type Ingredient struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(255);not null"`
	UserID uint   `json:"user_id" gorm:"index;not null"`
	User   User   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
