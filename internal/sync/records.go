package sync

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"WikiKeeper/internal/model"
)

// articleRecord — wire-формат статьи: метаданные едут внутри той же записи,
// чтобы статья занимала ровно одну запись коллекции.
type articleRecord struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
	IsPublic    bool   `json:"isPublic"`
	RemixedFrom string `json:"remixedFrom,omitempty"`
	Source      string `json:"source,omitempty"`
}

// rkeyFor возвращает record key для локального ключа сущности. Ключи статей,
// закладок и пинов — валидированные slug'и, id — uuid, даты — YYYY-MM-DD; всё
// это допустимые rkey. Имена привычек произвольны, поэтому кодируются.
func rkeyFor(collection, key string) string {
	if collection == model.CollectionHabit {
		return base64.RawURLEncoding.EncodeToString([]byte(key))
	}
	return key
}

// buildPayload читает текущее локальное состояние записи и собирает полезную
// нагрузку для push. Второе значение — штамп версии (UpdatedAt локальной
// копии), third — найдена ли запись вообще.
func (e *Engine) buildPayload(collection, key string) (any, int64, bool, error) {
	switch collection {
	case model.CollectionArticle:
		a, err := e.store.GetArticle(key)
		if err != nil {
			return nil, 0, false, ignoreNotFound(err)
		}
		rec := articleRecord{
			Key: a.Key, Title: a.Title, Content: a.Content,
			CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
			IsPublic: true,
		}
		if m, err := e.store.GetArticleMeta(key); err == nil {
			rec.IsPublic = m.IsPublic
			rec.RemixedFrom = m.RemixedFrom
			rec.Source = m.Source
		}
		return rec, a.UpdatedAt, true, nil

	case model.CollectionArchiveItem:
		it, err := e.store.GetArchiveItem(key)
		if err != nil {
			return nil, 0, false, ignoreNotFound(err)
		}
		return *it, it.UpdatedAt, true, nil

	case model.CollectionAlbum:
		a, err := e.store.GetAlbum(key)
		if err != nil {
			return nil, 0, false, ignoreNotFound(err)
		}
		return *a, a.UpdatedAt, true, nil

	case model.CollectionHabit:
		habits, err := e.store.ListHabits()
		if err != nil {
			return nil, 0, false, err
		}
		for _, h := range habits {
			if h.Name == key {
				return h, 0, true, nil
			}
		}
		return nil, 0, false, nil

	case model.CollectionHabitDay:
		d, err := e.store.GetHabitDay(key)
		if err != nil {
			return nil, 0, false, ignoreNotFound(err)
		}
		return *d, d.UpdatedAt, true, nil

	case model.CollectionComment:
		// ключ комментария — его id; статья восстанавливается из нагрузки
		c, err := e.findComment(key)
		if err != nil {
			return nil, 0, false, ignoreNotFound(err)
		}
		return *c, c.Timestamp, true, nil

	case model.CollectionBookmark:
		bms, err := e.store.ListBookmarks()
		if err != nil {
			return nil, 0, false, err
		}
		for _, b := range bms {
			if b.Key == key {
				return b, b.CreatedAt, true, nil
			}
		}
		return nil, 0, false, nil

	case model.CollectionPin:
		pins, err := e.store.ListPins()
		if err != nil {
			return nil, 0, false, err
		}
		for _, p := range pins {
			if p.Key == key {
				return p, 0, true, nil
			}
		}
		return nil, 0, false, nil
	}
	return nil, 0, false, fmt.Errorf("unknown collection %q", collection)
}

func (e *Engine) findComment(id string) (*model.Comment, error) {
	articles, err := e.store.ListArticles()
	if err != nil {
		return nil, err
	}
	for _, a := range articles {
		comments, err := e.store.ListComments(a.Key)
		if err != nil {
			return nil, err
		}
		for i := range comments {
			if comments[i].ID == id {
				return &comments[i], nil
			}
		}
	}
	return nil, model.ErrNotFound
}

// Исход применения удалённой записи.
type applyOutcome int

const (
	appliedRemote applyOutcome = iota // удалённая версия новее, записана локально
	inSync                            // версии равны, ничего не менялось
	localNewer                        // локальная версия новее, нужен push
)

// applyRemote применяет удалённую запись по правилу last-write-wins.
// Возвращённая версия — updatedAt победившей стороны.
func (e *Engine) applyRemote(collection string, value json.RawMessage) (string, int64, applyOutcome, error) {
	switch collection {
	case model.CollectionArticle:
		var rec articleRecord
		if err := json.Unmarshal(value, &rec); err != nil || rec.Key == "" {
			return "", 0, inSync, fmt.Errorf("malformed article record: %w", err)
		}
		local, err := e.store.GetArticle(rec.Key)
		switch {
		case errors.Is(err, model.ErrNotFound):
			local = nil
		case err != nil:
			return rec.Key, 0, inSync, err
		}
		if local != nil && local.UpdatedAt > rec.UpdatedAt {
			return rec.Key, local.UpdatedAt, localNewer, nil
		}
		if local != nil && local.UpdatedAt == rec.UpdatedAt {
			return rec.Key, local.UpdatedAt, inSync, nil
		}
		a := model.Article{Key: rec.Key, Title: rec.Title, Content: rec.Content, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
		if local != nil {
			// проигравшая локальная версия остаётся в цепочке истории;
			// снимок и перезапись атомарны
			hist := model.HistoryEntry{
				ArticleKey: local.Key,
				Timestamp:  maxTS(rec.UpdatedAt-1, local.UpdatedAt+1),
				Title:      local.Title,
				Content:    local.Content,
			}
			if err := e.store.PutArticleWithHistory(a, hist); err != nil {
				return rec.Key, 0, inSync, err
			}
		} else if err := e.store.PutArticle(a); err != nil {
			return rec.Key, 0, inSync, err
		}
		meta := model.ArticleMeta{Key: rec.Key, IsPublic: rec.IsPublic, RemixedFrom: rec.RemixedFrom, Source: rec.Source}
		if err := e.store.PutArticleMeta(meta); err != nil {
			return rec.Key, 0, inSync, err
		}
		return rec.Key, rec.UpdatedAt, appliedRemote, nil

	case model.CollectionArchiveItem:
		var it model.ArchiveItem
		if err := json.Unmarshal(value, &it); err != nil || it.ID == "" {
			return "", 0, inSync, fmt.Errorf("malformed archive record: %w", err)
		}
		local, err := e.store.GetArchiveItem(it.ID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return it.ID, 0, inSync, err
		}
		if local != nil && local.UpdatedAt > it.UpdatedAt {
			return it.ID, local.UpdatedAt, localNewer, nil
		}
		if local != nil && local.UpdatedAt == it.UpdatedAt {
			return it.ID, local.UpdatedAt, inSync, nil
		}
		return it.ID, it.UpdatedAt, appliedRemote, e.store.PutArchiveItem(it)

	case model.CollectionAlbum:
		var a model.Album
		if err := json.Unmarshal(value, &a); err != nil || a.ID == "" {
			return "", 0, inSync, fmt.Errorf("malformed album record: %w", err)
		}
		local, err := e.store.GetAlbum(a.ID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return a.ID, 0, inSync, err
		}
		if local != nil && local.UpdatedAt > a.UpdatedAt {
			return a.ID, local.UpdatedAt, localNewer, nil
		}
		if local != nil && local.UpdatedAt == a.UpdatedAt {
			return a.ID, local.UpdatedAt, inSync, nil
		}
		return a.ID, a.UpdatedAt, appliedRemote, e.store.PutAlbum(a)

	case model.CollectionHabit:
		var h model.Habit
		if err := json.Unmarshal(value, &h); err != nil || h.Name == "" {
			return "", 0, inSync, fmt.Errorf("malformed habit record: %w", err)
		}
		habits, err := e.store.ListHabits()
		if err != nil {
			return h.Name, 0, inSync, err
		}
		for _, ex := range habits {
			if ex.Name == h.Name {
				return h.Name, 0, inSync, nil // без версии ничья трактуется в пользу локальной
			}
		}
		return h.Name, 0, appliedRemote, e.store.PutHabit(h)

	case model.CollectionHabitDay:
		var d model.HabitDay
		if err := json.Unmarshal(value, &d); err != nil || d.Date == "" {
			return "", 0, inSync, fmt.Errorf("malformed habit day record: %w", err)
		}
		local, err := e.store.GetHabitDay(d.Date)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return d.Date, 0, inSync, err
		}
		if local != nil && local.UpdatedAt > d.UpdatedAt {
			return d.Date, local.UpdatedAt, localNewer, nil
		}
		if local != nil && local.UpdatedAt == d.UpdatedAt {
			return d.Date, local.UpdatedAt, inSync, nil
		}
		return d.Date, d.UpdatedAt, appliedRemote, e.store.PutHabitDay(d)

	case model.CollectionComment:
		var c model.Comment
		if err := json.Unmarshal(value, &c); err != nil || c.ID == "" {
			return "", 0, inSync, fmt.Errorf("malformed comment record: %w", err)
		}
		existing, err := e.findComment(c.ID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return c.ID, 0, inSync, err
		}
		if existing != nil {
			return c.ID, existing.Timestamp, inSync, nil // комментарии неизменяемы
		}
		return c.ID, c.Timestamp, appliedRemote, e.store.PutComment(c)

	case model.CollectionBookmark:
		var b model.Bookmark
		if err := json.Unmarshal(value, &b); err != nil || b.Key == "" {
			return "", 0, inSync, fmt.Errorf("malformed bookmark record: %w", err)
		}
		return b.Key, b.CreatedAt, appliedRemote, e.store.AddBookmark(b.Key)

	case model.CollectionPin:
		var p model.Pin
		if err := json.Unmarshal(value, &p); err != nil || p.Key == "" {
			return "", 0, inSync, fmt.Errorf("malformed pin record: %w", err)
		}
		pins, err := e.store.ListPins()
		if err != nil {
			return p.Key, 0, inSync, err
		}
		for _, ex := range pins {
			if ex.Key == p.Key {
				return p.Key, 0, inSync, nil
			}
		}
		return p.Key, 0, appliedRemote, e.store.PutPin(p)
	}
	return "", 0, inSync, fmt.Errorf("unknown collection %q", collection)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}

func maxTS(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
