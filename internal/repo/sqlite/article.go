package sqlite

import (
	"WikiKeeper/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetArticle возвращает статью по ключу.
func (s *Store) GetArticle(key string) (*model.Article, error) {
	var a model.Article
	if err := s.db.First(&a, "key = ?", key).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListArticles возвращает все статьи, отсортированные по updated_at DESC.
func (s *Store) ListArticles() ([]model.Article, error) {
	var res []model.Article
	err := s.db.Order("updated_at DESC").Find(&res).Error
	return res, wrap("list articles", err)
}

// PutArticle вставляет или перезаписывает статью (last-write-wins).
func (s *Store) PutArticle(a model.Article) error {
	if err := s.ensureQuota(len(a.Title) + len(a.Content)); err != nil {
		return err
	}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&a).Error
	return wrap("put article", err)
}

// PutArticleWithHistory перезаписывает статью и добавляет снимок вытесняемой
// версии одной транзакцией. Квота проверяется на суммарный объём до любой
// мутации: отказ не оставляет частичной записи.
func (s *Store) PutArticleWithHistory(a model.Article, hist model.HistoryEntry) error {
	incoming := len(a.Title) + len(a.Content) + len(hist.Title) + len(hist.Content)
	if err := s.ensureQuota(incoming); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&hist).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&a).Error
	})
	return wrap("put article with history", err)
}

// DeleteArticle удаляет статью и всё, что на неё ссылается: историю,
// метаданные, закладку, пин и черновик. Одной транзакцией.
func (s *Store) DeleteArticle(key string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.HistoryEntry{}, "article_key = ?", key).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.ArticleMeta{}, "key = ?", key).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Bookmark{}, "key = ?", key).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Pin{}, "key = ?", key).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Draft{}, "key = ?", key).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Comment{}, "article_key = ?", key).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Article{}, "key = ?", key).Error
	})
	return wrap("delete article", err)
}

// GetArticleMeta возвращает метаданные статьи.
func (s *Store) GetArticleMeta(key string) (*model.ArticleMeta, error) {
	var m model.ArticleMeta
	if err := s.db.First(&m, "key = ?", key).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// PutArticleMeta вставляет или перезаписывает метаданные.
func (s *Store) PutArticleMeta(m model.ArticleMeta) error {
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
	return wrap("put article meta", err)
}

// AppendHistory добавляет неизменяемый снимок в историю статьи.
func (s *Store) AppendHistory(e model.HistoryEntry) error {
	if err := s.ensureQuota(len(e.Title) + len(e.Content)); err != nil {
		return err
	}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&e).Error
	return wrap("append history", err)
}

// ListHistory возвращает сохранённые снимки статьи, новые первыми.
func (s *Store) ListHistory(key string) ([]model.HistoryEntry, error) {
	var res []model.HistoryEntry
	err := s.db.Where("article_key = ?", key).Order("timestamp DESC").Find(&res).Error
	return res, wrap("list history", err)
}

// GetHistoryEntry возвращает снимок по временной метке.
func (s *Store) GetHistoryEntry(key string, timestamp int64) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	err := s.db.First(&e, "article_key = ? AND timestamp = ?", key, timestamp).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}
