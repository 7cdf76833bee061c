package models

// Tag is a free-text label attachable to many posts. Names are indexed but
// not unique; tag resolution at post-write time reuses the first match.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:20;index;not null" json:"name"`
	Posts []Post `gorm:"many2many:post_tags" json:"-"`
}
