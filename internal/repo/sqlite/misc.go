package sqlite

import (
	"errors"
	"time"

	"WikiKeeper/internal/model"
	"WikiKeeper/internal/repo"

	"gorm.io/gorm/clause"
)

// ListBookmarks возвращает закладки в порядке добавления.
func (s *Store) ListBookmarks() ([]model.Bookmark, error) {
	var res []model.Bookmark
	err := s.db.Order("created_at ASC").Find(&res).Error
	return res, wrap("list bookmarks", err)
}

// AddBookmark добавляет ключ в набор закладок (идемпотентно).
func (s *Store) AddBookmark(key string) error {
	b := model.Bookmark{Key: key, CreatedAt: time.Now().UnixMilli()}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&b).Error
	return wrap("add bookmark", err)
}

// RemoveBookmark удаляет ключ из набора закладок.
func (s *Store) RemoveBookmark(key string) error {
	return wrap("remove bookmark", s.db.Delete(&model.Bookmark{}, "key = ?", key).Error)
}

// ListPins возвращает пины в пользовательском порядке.
func (s *Store) ListPins() ([]model.Pin, error) {
	var res []model.Pin
	err := s.db.Order("position ASC").Find(&res).Error
	return res, wrap("list pins", err)
}

// PutPin вставляет или перезаписывает пин.
func (s *Store) PutPin(p model.Pin) error {
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&p).Error
	return wrap("put pin", err)
}

// RemovePin удаляет пин.
func (s *Store) RemovePin(key string) error {
	return wrap("remove pin", s.db.Delete(&model.Pin{}, "key = ?", key).Error)
}

// GetSectionOrder возвращает сохранённый порядок секций (nil, если не задан).
func (s *Store) GetSectionOrder() ([]string, error) {
	var so model.SectionOrder
	if err := s.db.First(&so, "id = 1").Error; err != nil {
		if errors.Is(notFound(err), model.ErrNotFound) {
			return nil, nil
		}
		return nil, wrap("get section order", err)
	}
	return so.Sections, nil
}

// PutSectionOrder перезаписывает порядок секций.
func (s *Store) PutSectionOrder(sections []string) error {
	so := model.SectionOrder{ID: 1, Sections: sections}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&so).Error
	return wrap("put section order", err)
}

// ListBentoSizes возвращает карту размеров секций.
func (s *Store) ListBentoSizes() (map[string]string, error) {
	var rows []model.BentoSize
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, wrap("list bento sizes", err)
	}
	res := make(map[string]string, len(rows))
	for _, r := range rows {
		res[r.SectionID] = r.Size
	}
	return res, nil
}

// PutBentoSize задаёт размер секции.
func (s *Store) PutBentoSize(sectionID, size string) error {
	b := model.BentoSize{SectionID: sectionID, Size: size}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&b).Error
	return wrap("put bento size", err)
}

// GetDraft возвращает черновик по ключу статьи ("" — новая страница).
func (s *Store) GetDraft(key string) (*model.Draft, error) {
	var d model.Draft
	if err := s.db.First(&d, "key = ?", key).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// PutDraft перезаписывает черновик.
func (s *Store) PutDraft(d model.Draft) error {
	if err := s.ensureQuota(len(d.Title) + len(d.Content)); err != nil {
		return err
	}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&d).Error
	return wrap("put draft", err)
}

// DeleteDraft удаляет черновик.
func (s *Store) DeleteDraft(key string) error {
	return wrap("delete draft", s.db.Delete(&model.Draft{}, "key = ?", key).Error)
}

// AppendActivity добавляет запись в журнал и обрезает его до repo.ActivityCap.
func (s *Store) AppendActivity(level, message string) error {
	e := model.ActivityEntry{Timestamp: time.Now().UnixMilli(), Level: level, Message: message}
	if err := s.db.Create(&e).Error; err != nil {
		return wrap("append activity", err)
	}
	// хвост за пределами лимита вычищаем сразу
	err := s.db.Exec(
		`DELETE FROM activity_entries WHERE id NOT IN (SELECT id FROM activity_entries ORDER BY id DESC LIMIT ?)`,
		repo.ActivityCap,
	).Error
	return wrap("trim activity", err)
}

// ListActivity возвращает последние записи журнала, новые первыми.
func (s *Store) ListActivity(limit int) ([]model.ActivityEntry, error) {
	if limit <= 0 || limit > repo.ActivityCap {
		limit = repo.ActivityCap
	}
	var res []model.ActivityEntry
	err := s.db.Order("id DESC").Limit(limit).Find(&res).Error
	return res, wrap("list activity", err)
}
