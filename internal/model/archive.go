package model

// Типы элементов архива.
const (
	ArchiveTypeImage = "image"
	ArchiveTypeVideo = "video"
)

// HabitDayRef привязывает элемент архива к конкретному дню привычки.
type HabitDayRef struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Habit string `json:"habit"`
}

// ArchiveItem — медиа-элемент архива. Принадлежность альбомам, статьям и
// дням привычек — свойство самого элемента, а не контейнера: один элемент
// может состоять в нуле или многих группах одновременно.
type ArchiveItem struct {
	ID          string        `gorm:"primaryKey" json:"id"`
	Type        string        `json:"type"` // image | video
	URL         string        `json:"url,omitempty"`
	Blob        []byte        `json:"blob,omitempty"`
	Name        string        `json:"name"`
	Source      string        `json:"source,omitempty"`
	AlbumIDs    []string      `gorm:"serializer:json" json:"albumIds"`
	ArticleKeys []string      `gorm:"serializer:json" json:"articleKeys"`
	HabitDays   []HabitDayRef `gorm:"serializer:json" json:"habitDays"`
	AuthorName  string        `json:"authorName,omitempty"`
	AuthorDID   string        `json:"authorDid,omitempty"`
	AuthorURL   string        `json:"authorUrl,omitempty"`
	UserNote    string        `json:"userNote,omitempty"`
	Tags        []string      `gorm:"serializer:json" json:"tags"`
	CreatedAt   int64         `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   int64         `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// ArchiveItemPatch — частичное обновление элемента; nil-поля не трогаются.
type ArchiveItemPatch struct {
	Name        *string
	Source      *string
	UserNote    *string
	Tags        *[]string
	AlbumIDs    *[]string
	ArticleKeys *[]string
	HabitDays   *[]HabitDayRef
}

// Album — чистая группировка (artboard). Удаление альбома каскадится только
// на ссылки принадлежности, никогда на сами элементы.
type Album struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt int64  `gorm:"autoUpdateTime:false" json:"updatedAt"`
}
