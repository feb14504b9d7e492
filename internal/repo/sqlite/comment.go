package sqlite

import (
	"WikiKeeper/internal/model"

	"gorm.io/gorm/clause"
)

// ListComments возвращает комментарии статьи в хронологическом порядке.
func (s *Store) ListComments(articleKey string) ([]model.Comment, error) {
	var res []model.Comment
	err := s.db.Where("article_key = ?", articleKey).Order("timestamp ASC").Find(&res).Error
	return res, wrap("list comments", err)
}

// PutComment вставляет или перезаписывает комментарий.
func (s *Store) PutComment(c model.Comment) error {
	if err := s.ensureQuota(len(c.Text)); err != nil {
		return err
	}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&c).Error
	return wrap("put comment", err)
}

// DeleteComment удаляет комментарий по id в рамках статьи.
func (s *Store) DeleteComment(articleKey, id string) error {
	err := s.db.Delete(&model.Comment{}, "article_key = ? AND id = ?", articleKey, id).Error
	return wrap("delete comment", err)
}
