package service

import (
	"errors"

	"WikiKeeper/internal/model"
)

// ImportSummary — итог разбора документа импорта.
type ImportSummary struct {
	Created int
	Updated int
	Skipped int
}

// ExportArticles собирает портативный документ со всеми статьями.
// История, метаданные и состояние синхронизации в экспорт не попадают.
func (w *Wiki) ExportArticles() (model.ExportDocument, error) {
	articles, err := w.store.ListArticles()
	if err != nil {
		return nil, err
	}
	doc := make(model.ExportDocument, len(articles))
	for _, a := range articles {
		doc[a.Key] = model.ExportedArticle{
			Title:     a.Title,
			Content:   a.Content,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		}
	}
	return doc, nil
}

// ImportArticles вливает документ экспорта по правилу «новее побеждает»:
// отсутствующая статья создаётся как есть, более свежая входящая перезаписывает
// локальную (текущая версия уходит в историю), всё остальное пропускается.
// Повторный импорт того же документа ничего не меняет.
func (w *Wiki) ImportArticles(doc model.ExportDocument) (*ImportSummary, error) {
	sum := &ImportSummary{}
	for key, in := range doc {
		if err := validateKey(key); err != nil {
			w.log.Warnw("import: skip invalid key", "key", key, "err", err)
			sum.Skipped++
			continue
		}
		local, err := w.store.GetArticle(key)
		switch {
		case errors.Is(err, model.ErrNotFound):
			// Новая статья: метки времени берём из документа, историю не пишем.
			a := model.Article{Key: key, Title: in.Title, Content: in.Content,
				CreatedAt: in.CreatedAt, UpdatedAt: in.UpdatedAt}
			if a.CreatedAt == 0 {
				a.CreatedAt = nowMillis()
			}
			if a.UpdatedAt == 0 {
				a.UpdatedAt = a.CreatedAt
			}
			if err := w.store.PutArticle(a); err != nil {
				return sum, err
			}
			if err := w.ensureMeta(key); err != nil {
				return sum, err
			}
			sum.Created++
			w.syncer.SyncBestEffort(model.CollectionArticle, key)
		case err != nil:
			return sum, err
		case in.UpdatedAt > local.UpdatedAt:
			hist := model.HistoryEntry{
				ArticleKey: key,
				Timestamp:  bumpAfter(local.UpdatedAt),
				Title:      local.Title,
				Content:    local.Content,
			}
			next := *local
			next.Title = in.Title
			next.Content = in.Content
			next.UpdatedAt = in.UpdatedAt
			if err := w.store.PutArticleWithHistory(next, hist); err != nil {
				return sum, err
			}
			sum.Updated++
			w.syncer.SyncBestEffort(model.CollectionArticle, key)
		default:
			sum.Skipped++
		}
	}
	w.appendActivity(model.ActivityInfo, "import finished")
	return sum, nil
}

// ensureMeta гарантирует строку метаданных с настройками по умолчанию.
func (w *Wiki) ensureMeta(key string) error {
	_, err := w.store.GetArticleMeta(key)
	if errors.Is(err, model.ErrNotFound) {
		return w.store.PutArticleMeta(model.ArticleMeta{Key: key, IsPublic: true})
	}
	return err
}

// appendActivity пишет в журнал, не роняя основную операцию.
func (w *Wiki) appendActivity(level, message string) {
	if err := w.store.AppendActivity(level, message); err != nil {
		w.log.Warnw("activity log write failed", "err", err)
	}
}
