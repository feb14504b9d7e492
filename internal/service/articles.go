package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"WikiKeeper/internal/model"
)

// GetAllArticles возвращает все статьи, свежие первыми.
func (w *Wiki) GetAllArticles() ([]model.Article, error) {
	return w.store.ListArticles()
}

// GetArticle возвращает статью по ключу.
func (w *Wiki) GetArticle(key string) (*model.Article, error) {
	return w.store.GetArticle(key)
}

// SaveArticle сохраняет статью. Состояние, которое перезаписывается, сначала
// попадает в историю; локальный коммит возвращается немедленно, push уезжает
// асинхронно. Первое сохранение под ключом историю не пишет: несуществующее
// прошлое не фиксируется.
func (w *Wiki) SaveArticle(key, title, content string) (*model.Article, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, &model.ValidationError{Field: "title", Reason: "is required"}
	}

	cur, err := w.store.GetArticle(key)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	createdAt := nowMillis()
	var prevUpdated int64
	if cur != nil {
		createdAt = cur.CreatedAt
		prevUpdated = cur.UpdatedAt
	}
	ts := bumpAfter(prevUpdated)

	a := model.Article{Key: key, Title: title, Content: content, CreatedAt: createdAt, UpdatedAt: ts}
	if cur != nil {
		// снимок и перезапись атомарны: отказ (в том числе по квоте) не
		// оставляет осиротевшей записи в истории
		hist := model.HistoryEntry{
			ArticleKey: key,
			Timestamp:  ts,
			Title:      cur.Title,
			Content:    cur.Content,
		}
		if err := w.store.PutArticleWithHistory(a, hist); err != nil {
			return nil, err
		}
	} else if err := w.store.PutArticle(a); err != nil {
		return nil, err
	}
	if err := w.ensureMeta(key); err != nil {
		return nil, err
	}
	// успешное сохранение съедает черновик
	_ = w.store.DeleteDraft(key)

	w.syncer.SyncBestEffort(model.CollectionArticle, key)
	return &a, nil
}

// DeleteArticle удаляет статью. Удаление транзакционно с удалённой стороной:
// если запись когда-либо была отправлена и удалённое удаление не прошло,
// локально ничего не меняется и ошибка уходит вызывающему.
func (w *Wiki) DeleteArticle(ctx context.Context, key string) error {
	if _, err := w.store.GetArticle(key); err != nil {
		return err
	}
	if err := w.syncer.SyncTransactionalDelete(ctx, model.CollectionArticle, key); err != nil {
		return err
	}
	return w.store.DeleteArticle(key)
}

// GetArticleHistory возвращает историю статьи, новые первыми. Позиция 0 —
// всегда живая статья.
func (w *Wiki) GetArticleHistory(key string) ([]model.HistoryEntry, error) {
	cur, err := w.store.GetArticle(key)
	if err != nil {
		return nil, err
	}
	stored, err := w.store.ListHistory(key)
	if err != nil {
		return nil, err
	}
	res := make([]model.HistoryEntry, 0, len(stored)+1)
	res = append(res, model.HistoryEntry{
		ArticleKey: key,
		Timestamp:  cur.UpdatedAt,
		Title:      cur.Title,
		Content:    cur.Content,
	})
	return append(res, stored...), nil
}

// RestoreArticle откатывает статью к снимку. Реализован как обычное
// сохранение, поэтому вытесняемая версия сама попадает в историю —
// восстановление никогда не разрушает историю.
func (w *Wiki) RestoreArticle(key string, timestamp int64) (*model.Article, error) {
	entry, err := w.store.GetHistoryEntry(key, timestamp)
	if err != nil {
		return nil, fmt.Errorf("history snapshot %d: %w", timestamp, err)
	}
	return w.SaveArticle(key, entry.Title, entry.Content)
}

// GetArticleMeta возвращает метаданные статьи (публичность, происхождение).
func (w *Wiki) GetArticleMeta(key string) (*model.ArticleMeta, error) {
	m, err := w.store.GetArticleMeta(key)
	if errors.Is(err, model.ErrNotFound) {
		return &model.ArticleMeta{Key: key, IsPublic: true}, nil
	}
	return m, err
}

// SetArticleVisibility переключает публичность страницы.
func (w *Wiki) SetArticleVisibility(key string, public bool) error {
	if _, err := w.store.GetArticle(key); err != nil {
		return err
	}
	m, err := w.GetArticleMeta(key)
	if err != nil {
		return err
	}
	m.IsPublic = public
	if err := w.store.PutArticleMeta(*m); err != nil {
		return err
	}
	w.syncer.SyncBestEffort(model.CollectionArticle, key)
	return nil
}
