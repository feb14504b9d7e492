package service

import (
	"context"

	"WikiKeeper/internal/model"

	"github.com/google/uuid"
)

// GetArchive возвращает все элементы архива, новые первыми.
func (w *Wiki) GetArchive() ([]model.ArchiveItem, error) {
	return w.store.ListArchiveItems()
}

// SaveArchiveItem сохраняет новый элемент архива. Id выдаётся здесь и больше
// никогда не переиспользуется.
func (w *Wiki) SaveArchiveItem(item model.ArchiveItem) (*model.ArchiveItem, error) {
	if item.Type != model.ArchiveTypeImage && item.Type != model.ArchiveTypeVideo {
		return nil, &model.ValidationError{Field: "type", Reason: "must be image or video"}
	}
	if item.URL == "" && len(item.Blob) == 0 {
		return nil, &model.ValidationError{Field: "payload", Reason: "either url or inline blob is required"}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := nowMillis()
	if item.CreatedAt == 0 {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if err := w.store.PutArchiveItem(item); err != nil {
		return nil, err
	}
	w.syncer.SyncBestEffort(model.CollectionArchiveItem, item.ID)
	return &item, nil
}

// UpdateArchiveItem применяет частичное обновление к элементу архива.
// Принадлежность альбомам/статьям/дням привычек — свойство элемента,
// поэтому меняется именно здесь.
func (w *Wiki) UpdateArchiveItem(id string, patch model.ArchiveItemPatch) (*model.ArchiveItem, error) {
	it, err := w.store.GetArchiveItem(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		it.Name = *patch.Name
	}
	if patch.Source != nil {
		it.Source = *patch.Source
	}
	if patch.UserNote != nil {
		it.UserNote = *patch.UserNote
	}
	if patch.Tags != nil {
		it.Tags = *patch.Tags
	}
	if patch.AlbumIDs != nil {
		it.AlbumIDs = *patch.AlbumIDs
	}
	if patch.ArticleKeys != nil {
		it.ArticleKeys = *patch.ArticleKeys
	}
	if patch.HabitDays != nil {
		it.HabitDays = *patch.HabitDays
	}
	it.UpdatedAt = bumpAfter(it.UpdatedAt)
	if err := w.store.PutArchiveItem(*it); err != nil {
		return nil, err
	}
	w.syncer.SyncBestEffort(model.CollectionArchiveItem, id)
	return it, nil
}

// DeleteArchiveItem удаляет элемент архива (транзакционно с удалённой стороной).
func (w *Wiki) DeleteArchiveItem(ctx context.Context, id string) error {
	if _, err := w.store.GetArchiveItem(id); err != nil {
		return err
	}
	if err := w.syncer.SyncTransactionalDelete(ctx, model.CollectionArchiveItem, id); err != nil {
		return err
	}
	return w.store.DeleteArchiveItem(id)
}

// GetAlbums возвращает все альбомы.
func (w *Wiki) GetAlbums() ([]model.Album, error) {
	return w.store.ListAlbums()
}

// SaveAlbum создаёт или переименовывает альбом.
func (w *Wiki) SaveAlbum(album model.Album) (*model.Album, error) {
	if album.Name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "is required"}
	}
	now := nowMillis()
	if album.ID == "" {
		album.ID = uuid.NewString()
		album.CreatedAt = now
	} else {
		cur, err := w.store.GetAlbum(album.ID)
		if err != nil {
			return nil, err
		}
		album.CreatedAt = cur.CreatedAt
		now = bumpAfter(cur.UpdatedAt)
	}
	album.UpdatedAt = now
	if err := w.store.PutAlbum(album); err != nil {
		return nil, err
	}
	w.syncer.SyncBestEffort(model.CollectionAlbum, album.ID)
	return &album, nil
}

// DeleteAlbum удаляет альбом. Каскад касается только ссылок принадлежности:
// элементы остаются и после правки перечленства отправляются заново.
func (w *Wiki) DeleteAlbum(ctx context.Context, id string) error {
	if _, err := w.store.GetAlbum(id); err != nil {
		return err
	}
	if err := w.syncer.SyncTransactionalDelete(ctx, model.CollectionAlbum, id); err != nil {
		return err
	}
	items, err := w.store.ListArchiveItems()
	if err != nil {
		return err
	}
	if err := w.store.DeleteAlbum(id); err != nil {
		return err
	}
	for _, it := range items {
		for _, aid := range it.AlbumIDs {
			if aid == id {
				w.syncer.SyncBestEffort(model.CollectionArchiveItem, it.ID)
				break
			}
		}
	}
	return nil
}
