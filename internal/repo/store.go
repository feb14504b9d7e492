package repo

import "WikiKeeper/internal/model"

// ActivityCap — сколько последних записей журнала активности хранится локально.
const ActivityCap = 200

// ArticleRepository — доступ к статьям, их метаданным и истории.
type ArticleRepository interface {
	GetArticle(key string) (*model.Article, error)
	ListArticles() ([]model.Article, error)
	PutArticle(a model.Article) error
	// DeleteArticle удаляет статью вместе с историей, метаданными,
	// членством в закладках/пинах и черновиком.
	DeleteArticle(key string) error

	GetArticleMeta(key string) (*model.ArticleMeta, error)
	PutArticleMeta(m model.ArticleMeta) error

	AppendHistory(e model.HistoryEntry) error
	// PutArticleWithHistory перезаписывает статью и снимок вытесняемой версии
	// одной транзакцией: при отказе (включая квоту) не остаётся ни того, ни
	// другого.
	PutArticleWithHistory(a model.Article, hist model.HistoryEntry) error
	// ListHistory возвращает сохранённые снимки, новые первыми.
	ListHistory(key string) ([]model.HistoryEntry, error)
	GetHistoryEntry(key string, timestamp int64) (*model.HistoryEntry, error)
}

// ArchiveRepository — элементы архива и альбомы.
type ArchiveRepository interface {
	GetArchiveItem(id string) (*model.ArchiveItem, error)
	ListArchiveItems() ([]model.ArchiveItem, error)
	PutArchiveItem(it model.ArchiveItem) error
	DeleteArchiveItem(id string) error

	GetAlbum(id string) (*model.Album, error)
	ListAlbums() ([]model.Album, error)
	PutAlbum(a model.Album) error
	// DeleteAlbum удаляет альбом и вычищает его id из AlbumIDs элементов.
	// Сами элементы не трогаются.
	DeleteAlbum(id string) error
}

// HabitRepository — привычки и их лог по дням.
type HabitRepository interface {
	ListHabits() ([]model.Habit, error)
	PutHabit(h model.Habit) error
	DeleteHabit(name string) error

	GetHabitDay(date string) (*model.HabitDay, error)
	ListHabitDays() ([]model.HabitDay, error)
	PutHabitDay(d model.HabitDay) error
	DeleteHabitDay(date string) error
}

// CommentRepository — комментарии к статьям.
type CommentRepository interface {
	ListComments(articleKey string) ([]model.Comment, error)
	PutComment(c model.Comment) error
	DeleteComment(articleKey, id string) error
}

// BookmarkRepository — закладки и пины.
type BookmarkRepository interface {
	ListBookmarks() ([]model.Bookmark, error)
	AddBookmark(key string) error
	RemoveBookmark(key string) error

	ListPins() ([]model.Pin, error)
	PutPin(p model.Pin) error
	RemovePin(key string) error
}

// LayoutRepository — UI-состояние (порядок секций, bento-размеры) и черновики.
type LayoutRepository interface {
	GetSectionOrder() ([]string, error)
	PutSectionOrder(sections []string) error
	ListBentoSizes() (map[string]string, error)
	PutBentoSize(sectionID, size string) error

	GetDraft(key string) (*model.Draft, error)
	PutDraft(d model.Draft) error
	DeleteDraft(key string) error
}

// SessionRepository — слот удалённой сессии и незавершённый OAuth-поток.
type SessionRepository interface {
	GetSession() (*model.RemoteSession, error)
	PutSession(s model.RemoteSession) error
	ClearSession() error

	GetPendingAuth() (*model.PendingAuth, error)
	PutPendingAuth(p model.PendingAuth) error
	ClearPendingAuth() error
}

// ActivityRepository — локальный журнал уведомлений.
type ActivityRepository interface {
	AppendActivity(level, message string) error
	ListActivity(limit int) ([]model.ActivityEntry, error)
}

// SyncStateRepository — последнее синхронизированное состояние записей.
type SyncStateRepository interface {
	GetSyncState(collection, key string) (*model.SyncState, error)
	PutSyncState(st model.SyncState) error
	DeleteSyncState(collection, key string) error
	ListSyncStates(collection string) ([]model.SyncState, error)
}

// Store агрегирует все репозитории локального хранилища.
// Единственный источник правды для вызывающего кода; сетевой слой сюда
// не заглядывает иначе как через Sync Engine.
type Store interface {
	ArticleRepository
	ArchiveRepository
	HabitRepository
	CommentRepository
	BookmarkRepository
	LayoutRepository
	SessionRepository
	ActivityRepository
	SyncStateRepository

	Close() error
}
