package entity

import "time"

// BroadTheme представляет широкую тему вопросов (например, "История геокешинга")
type BroadTheme struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Color     string    `gorm:"size:20;not null;default:''" json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (BroadTheme) TableName() string {
	return "broad_themes"
}

// SpecificTheme представляет подтему внутри широкой темы
type SpecificTheme struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BroadThemeID uint      `gorm:"not null;index" json:"broad_theme_id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Color        string    `gorm:"size:20;not null;default:''" json:"color"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (SpecificTheme) TableName() string {
	return "specific_themes"
}

// Keyword представляет точное ключевое слово вопроса (используется
// для предотвращения дублей тем внутри одного квиза)
type Keyword struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Keyword) TableName() string {
	return "keywords"
}

// Country представляет страну, к которой относится вопрос
type Country struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Code      string    `gorm:"size:2;not null;default:''" json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Country) TableName() string {
	return "countries"
}
