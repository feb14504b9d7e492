package service

import (
	"context"
	"errors"

	"WikiKeeper/internal/model"
)

// GetBookmarks возвращает ключи закладок в порядке добавления.
func (w *Wiki) GetBookmarks() ([]string, error) {
	bms, err := w.store.ListBookmarks()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(bms))
	for _, b := range bms {
		keys = append(keys, b.Key)
	}
	return keys, nil
}

// AddBookmark добавляет статью в закладки.
func (w *Wiki) AddBookmark(key string) error {
	if _, err := w.store.GetArticle(key); err != nil {
		return err
	}
	if err := w.store.AddBookmark(key); err != nil {
		return err
	}
	w.syncer.SyncBestEffort(model.CollectionBookmark, key)
	return nil
}

// RemoveBookmark убирает статью из закладок (транзакционно с удалённой стороной).
func (w *Wiki) RemoveBookmark(ctx context.Context, key string) error {
	if err := w.syncer.SyncTransactionalDelete(ctx, model.CollectionBookmark, key); err != nil {
		return err
	}
	return w.store.RemoveBookmark(key)
}

// GetPins возвращает закреплённые статьи в пользовательском порядке.
func (w *Wiki) GetPins() ([]model.Pin, error) {
	return w.store.ListPins()
}

// PinArticle закрепляет статью в конец списка пинов.
func (w *Wiki) PinArticle(key string) error {
	if _, err := w.store.GetArticle(key); err != nil {
		return err
	}
	pins, err := w.store.ListPins()
	if err != nil {
		return err
	}
	for _, p := range pins {
		if p.Key == key {
			return nil
		}
	}
	if err := w.store.PutPin(model.Pin{Key: key, Position: len(pins)}); err != nil {
		return err
	}
	w.syncer.SyncBestEffort(model.CollectionPin, key)
	return nil
}

// UnpinArticle снимает закрепление (транзакционно с удалённой стороной).
func (w *Wiki) UnpinArticle(ctx context.Context, key string) error {
	if err := w.syncer.SyncTransactionalDelete(ctx, model.CollectionPin, key); err != nil {
		return err
	}
	return w.store.RemovePin(key)
}

// GetSectionOrder / SetSectionOrder — порядок секций домашней страницы.
// Чисто локальное UI-состояние, наружу не уходит.
func (w *Wiki) GetSectionOrder() ([]string, error) { return w.store.GetSectionOrder() }

func (w *Wiki) SetSectionOrder(sections []string) error {
	return w.store.PutSectionOrder(sections)
}

// GetBentoSizes / SetBentoSize — размеры плиток bento-раскладки.
func (w *Wiki) GetBentoSizes() (map[string]string, error) { return w.store.ListBentoSizes() }

func (w *Wiki) SetBentoSize(sectionID, size string) error {
	return w.store.PutBentoSize(sectionID, size)
}

// GetDraft возвращает черновик ("" — черновик новой страницы) или nil.
func (w *Wiki) GetDraft(key string) (*model.Draft, error) {
	d, err := w.store.GetDraft(key)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	return d, err
}

// SaveDraft перезаписывает буфер автосохранения.
func (w *Wiki) SaveDraft(key, title, content string) error {
	return w.store.PutDraft(model.Draft{Key: key, Title: title, Content: content, UpdatedAt: nowMillis()})
}

// DiscardDraft выбрасывает черновик.
func (w *Wiki) DiscardDraft(key string) error {
	return w.store.DeleteDraft(key)
}

// Activity возвращает последние записи журнала уведомлений.
func (w *Wiki) Activity(limit int) ([]model.ActivityEntry, error) {
	return w.store.ListActivity(limit)
}

// CollectionSummary — локальное и синхронизированное количество записей
// одной коллекции плюс состояние движка по ней.
type CollectionSummary struct {
	Collection string
	Local      int
	Synced     int
	State      string
	Error      string
}

// RemoteStorageSummary — сводка «что лежит у нас и что дошло до PDS».
type RemoteStorageSummary struct {
	Connected   bool
	Handle      string
	DID         string
	PDSEndpoint string
	AuthState   string
	Collections []CollectionSummary
}

// GetRemoteStorageSummary собирает сводку для экрана статуса.
func (w *Wiki) GetRemoteStorageSummary(ctx context.Context) (*RemoteStorageSummary, error) {
	sum := &RemoteStorageSummary{}
	if sess, err := w.store.GetSession(); err == nil {
		sum.Connected = true
		sum.Handle = sess.Handle
		sum.DID = sess.DID
		sum.PDSEndpoint = sess.PDSEndpoint
	}
	if w.oauth != nil {
		sum.AuthState = w.oauth.State().String()
	}
	for _, collection := range model.SyncedCollections {
		cs := CollectionSummary{Collection: collection}
		states, err := w.store.ListSyncStates(collection)
		if err != nil {
			return nil, err
		}
		cs.Synced = len(states)
		cs.Local = w.localCount(collection)
		cs.State, cs.Error = w.syncer.Status(collection)
		sum.Collections = append(sum.Collections, cs)
	}
	return sum, nil
}

func (w *Wiki) localCount(collection string) int {
	switch collection {
	case model.CollectionArticle:
		if v, err := w.store.ListArticles(); err == nil {
			return len(v)
		}
	case model.CollectionArchiveItem:
		if v, err := w.store.ListArchiveItems(); err == nil {
			return len(v)
		}
	case model.CollectionAlbum:
		if v, err := w.store.ListAlbums(); err == nil {
			return len(v)
		}
	case model.CollectionHabit:
		if v, err := w.store.ListHabits(); err == nil {
			return len(v)
		}
	case model.CollectionHabitDay:
		if v, err := w.store.ListHabitDays(); err == nil {
			return len(v)
		}
	case model.CollectionComment:
		n := 0
		if articles, err := w.store.ListArticles(); err == nil {
			for _, a := range articles {
				if cs, err := w.store.ListComments(a.Key); err == nil {
					n += len(cs)
				}
			}
		}
		return n
	case model.CollectionBookmark:
		if v, err := w.store.ListBookmarks(); err == nil {
			return len(v)
		}
	case model.CollectionPin:
		if v, err := w.store.ListPins(); err == nil {
			return len(v)
		}
	}
	return 0
}
