package model

// Bookmark — членство статьи в наборе закладок.
type Bookmark struct {
	Key       string `gorm:"primaryKey" json:"key"`
	CreatedAt int64  `gorm:"autoCreateTime:false" json:"createdAt"`
}

// Pin — закреплённая статья на домашней странице; Position задаёт порядок.
type Pin struct {
	Key      string `gorm:"primaryKey" json:"key"`
	Position int    `json:"position"`
}

// SectionOrder — порядок секций домашней страницы. Единственная строка.
// Чистое UI-состояние: сохраняется локально, наружу не синхронизируется.
type SectionOrder struct {
	ID       int      `gorm:"primaryKey"`
	Sections []string `gorm:"serializer:json"`
}

// BentoSize — размер плитки секции в bento-раскладке.
type BentoSize struct {
	SectionID string `gorm:"primaryKey"`
	Size      string
}

// Уровни записей журнала активности.
const (
	ActivityInfo  = "info"
	ActivityError = "error"
)

// ActivityEntry — локальный журнал уведомлений (ошибки синка, подключения,
// импорт). Хранится только последняя часть, см. repo.ActivityCap.
type ActivityEntry struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	Timestamp int64 `gorm:"index"`
	Level     string
	Message   string
}
