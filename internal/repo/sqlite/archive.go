package sqlite

import (
	"slices"
	"time"

	"WikiKeeper/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetArchiveItem возвращает элемент архива по id.
func (s *Store) GetArchiveItem(id string) (*model.ArchiveItem, error) {
	var it model.ArchiveItem
	if err := s.db.First(&it, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

// ListArchiveItems возвращает все элементы архива, новые первыми.
func (s *Store) ListArchiveItems() ([]model.ArchiveItem, error) {
	var res []model.ArchiveItem
	err := s.db.Order("created_at DESC").Find(&res).Error
	return res, wrap("list archive", err)
}

// PutArchiveItem вставляет или перезаписывает элемент архива.
func (s *Store) PutArchiveItem(it model.ArchiveItem) error {
	if err := s.ensureQuota(len(it.Blob) + len(it.URL) + len(it.UserNote)); err != nil {
		return err
	}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&it).Error
	return wrap("put archive item", err)
}

// DeleteArchiveItem удаляет элемент архива по id.
func (s *Store) DeleteArchiveItem(id string) error {
	return wrap("delete archive item", s.db.Delete(&model.ArchiveItem{}, "id = ?", id).Error)
}

// GetAlbum возвращает альбом по id.
func (s *Store) GetAlbum(id string) (*model.Album, error) {
	var a model.Album
	if err := s.db.First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListAlbums возвращает все альбомы в порядке создания.
func (s *Store) ListAlbums() ([]model.Album, error) {
	var res []model.Album
	err := s.db.Order("created_at ASC").Find(&res).Error
	return res, wrap("list albums", err)
}

// PutAlbum вставляет или перезаписывает альбом.
func (s *Store) PutAlbum(a model.Album) error {
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&a).Error
	return wrap("put album", err)
}

// DeleteAlbum удаляет альбом и вычищает его id из принадлежности элементов.
// Элементы архива при этом не удаляются.
func (s *Store) DeleteAlbum(id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []model.ArchiveItem
		if err := tx.Find(&items).Error; err != nil {
			return err
		}
		now := time.Now().UnixMilli()
		for i := range items {
			if !slices.Contains(items[i].AlbumIDs, id) {
				continue
			}
			items[i].AlbumIDs = slices.DeleteFunc(items[i].AlbumIDs, func(v string) bool { return v == id })
			if items[i].UpdatedAt >= now {
				items[i].UpdatedAt++
			} else {
				items[i].UpdatedAt = now
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Album{}, "id = ?", id).Error
	})
	return wrap("delete album", err)
}
