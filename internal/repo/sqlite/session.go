package sqlite

import (
	"WikiKeeper/internal/model"

	"gorm.io/gorm/clause"
)

// GetSession возвращает активную удалённую сессию или model.ErrNotFound.
func (s *Store) GetSession() (*model.RemoteSession, error) {
	var sess model.RemoteSession
	if err := s.db.First(&sess, "id = 1").Error; err != nil {
		return nil, notFound(err)
	}
	return &sess, nil
}

// PutSession перезаписывает единственный слот сессии.
func (s *Store) PutSession(sess model.RemoteSession) error {
	sess.ID = 1
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sess).Error
	return wrap("put session", err)
}

// ClearSession очищает слот сессии.
func (s *Store) ClearSession() error {
	return wrap("clear session", s.db.Delete(&model.RemoteSession{}, "id = 1").Error)
}

// GetPendingAuth возвращает незавершённый OAuth-поток или model.ErrNotFound.
func (s *Store) GetPendingAuth() (*model.PendingAuth, error) {
	var p model.PendingAuth
	if err := s.db.First(&p, "id = 1").Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// PutPendingAuth сохраняет состояние потока до возвращения из редиректа.
func (s *Store) PutPendingAuth(p model.PendingAuth) error {
	p.ID = 1
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&p).Error
	return wrap("put pending auth", err)
}

// ClearPendingAuth забывает незавершённый поток.
func (s *Store) ClearPendingAuth() error {
	return wrap("clear pending auth", s.db.Delete(&model.PendingAuth{}, "id = 1").Error)
}

// GetSyncState возвращает состояние синхронизации записи или model.ErrNotFound.
func (s *Store) GetSyncState(collection, key string) (*model.SyncState, error) {
	var st model.SyncState
	err := s.db.First(&st, "collection = ? AND key = ?", collection, key).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

// PutSyncState перезаписывает состояние синхронизации записи.
func (s *Store) PutSyncState(st model.SyncState) error {
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&st).Error
	return wrap("put sync state", err)
}

// DeleteSyncState удаляет состояние синхронизации записи.
func (s *Store) DeleteSyncState(collection, key string) error {
	err := s.db.Delete(&model.SyncState{}, "collection = ? AND key = ?", collection, key).Error
	return wrap("delete sync state", err)
}

// ListSyncStates возвращает все состояния коллекции.
func (s *Store) ListSyncStates(collection string) ([]model.SyncState, error) {
	var res []model.SyncState
	err := s.db.Where("collection = ?", collection).Find(&res).Error
	return res, wrap("list sync states", err)
}
