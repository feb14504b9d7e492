package service

import (
	"context"
	"strings"

	"WikiKeeper/internal/model"

	"github.com/google/uuid"
)

// GetComments возвращает дерево комментариев статьи. Ответ с висячим
// parentId поднимается на верхний уровень — чтение никогда не падает
// из-за битой ссылки.
func (w *Wiki) GetComments(key string) ([]*model.CommentNode, error) {
	comments, err := w.store.ListComments(key)
	if err != nil {
		return nil, err
	}
	nodes := make(map[string]*model.CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &model.CommentNode{Comment: comments[i]}
	}
	var roots []*model.CommentNode
	for i := range comments {
		n := nodes[comments[i].ID]
		if parent, ok := nodes[comments[i].ParentID]; ok && comments[i].ParentID != comments[i].ID {
			parent.Replies = append(parent.Replies, n)
			continue
		}
		roots = append(roots, n)
	}
	return roots, nil
}

// AddComment добавляет комментарий (или ответ, если parentID непустой).
func (w *Wiki) AddComment(key, text, author, parentID string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &model.ValidationError{Field: "text", Reason: "is required"}
	}
	if _, err := w.store.GetArticle(key); err != nil {
		return nil, err
	}
	if author == "" {
		author = "anonymous"
	}
	c := model.Comment{
		ID:         uuid.NewString(),
		ArticleKey: key,
		ParentID:   parentID,
		Author:     author,
		Text:       text,
		Timestamp:  nowMillis(),
	}
	if err := w.store.PutComment(c); err != nil {
		return nil, err
	}
	w.syncer.SyncBestEffort(model.CollectionComment, c.ID)
	return &c, nil
}

// DeleteComment удаляет комментарий (транзакционно с удалённой стороной).
// Ответы не трогаются: при чтении они поднимутся на верхний уровень.
func (w *Wiki) DeleteComment(ctx context.Context, key, id string) error {
	if err := w.syncer.SyncTransactionalDelete(ctx, model.CollectionComment, id); err != nil {
		return err
	}
	return w.store.DeleteComment(key, id)
}
