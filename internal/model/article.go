package model

// Article — страница вики. Идентичность задаётся ключом (slug), ключ неизменяем.
// Время хранится в Unix-миллисекундах, чтобы метки без потерь проходили через
// JSON экспорта и удалённые записи.
type Article struct {
	Key       string `gorm:"primaryKey" json:"key"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt int64  `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// ArticleMeta — 1:1 к Article. Страница публична по умолчанию.
type ArticleMeta struct {
	Key         string `gorm:"primaryKey" json:"key"`
	IsPublic    bool   `json:"isPublic"`
	RemixedFrom string `json:"remixedFrom,omitempty"`
	Source      string `json:"source,omitempty"`
}

// HistoryEntry — неизменяемый снимок предыдущего состояния статьи.
// Append-only; позиция 0 в выдаче истории всегда соответствует живой статье
// и в таблице не хранится.
type HistoryEntry struct {
	ArticleKey string `gorm:"primaryKey;index" json:"articleKey"`
	Timestamp  int64  `gorm:"primaryKey" json:"timestamp"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// Draft — буфер автосохранения. Ключ "" зарезервирован под новую страницу.
// Черновики никогда не синхронизируются.
type Draft struct {
	Key       string `gorm:"primaryKey"`
	Title     string
	Content   string
	UpdatedAt int64
}

// ExportedArticle — элемент портативного документа экспорта.
type ExportedArticle struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ExportDocument — полный документ экспорта: карта ключ → статья.
type ExportDocument map[string]ExportedArticle
