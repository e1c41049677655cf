package model

import "gorm.io/gorm"

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Tag{}, &Ingredient{}, &Recipe{}}
}

// OwnedBy restricts a query to rows whose user_id matches the caller.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// WithAnyTag keeps recipes linked to at least one of ids.
func WithAnyTag(ids []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true}).Table("recipe_tags").Select("recipe_id").Where("tag_id IN ?", ids)
		return db.Where("id IN (?)", sub)
	}
}

// WithAnyIngredient keeps recipes linked to at least one of ids.
func WithAnyIngredient(ids []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true}).Table("recipe_ingredients").Select("recipe_id").Where("ingredient_id IN ?", ids)
		return db.Where("id IN (?)", sub)
	}
}

// AssignedTo keeps tags or ingredients referenced by at least one row of joinTable.
func AssignedTo(joinTable, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true}).Table(joinTable).Select(column)
		return db.Where("id IN (?)", sub)
	}
}
