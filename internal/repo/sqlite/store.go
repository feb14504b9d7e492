package sqlite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"WikiKeeper/internal/model"
	"WikiKeeper/internal/repo"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store — реализация repo.Store поверх локального файла SQLite (gorm).
type Store struct {
	db    *gorm.DB
	quota int64
}

var _ repo.Store = (*Store)(nil)

// Open открывает (и создаёт при необходимости) файл БД в каталоге dataDir
// и возвращает хранилище. Вторым значением возвращается путь к БД.
func Open(dataDir string, quotaBytes int64) (*Store, string, error) {
	if dataDir == "" {
		return nil, "", errors.New("empty data dir for local store")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dataDir, "wiki.sqlite")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, "", err
	}
	return &Store{db: db, quota: quotaBytes}, dbPath, nil
}

// Close закрывает соединение с БД.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&model.Article{},
		&model.ArticleMeta{},
		&model.HistoryEntry{},
		&model.Draft{},
		&model.ArchiveItem{},
		&model.Album{},
		&model.Habit{},
		&model.HabitDay{},
		&model.Comment{},
		&model.Bookmark{},
		&model.Pin{},
		&model.SectionOrder{},
		&model.BentoSize{},
		&model.ActivityEntry{},
		&model.RemoteSession{},
		&model.PendingAuth{},
		&model.SyncState{},
	)
}

// ensureQuota проверяет, что запись incoming байт контента не превысит квоту.
// Проверка выполняется до мутации: при отказе предыдущее состояние не тронуто.
func (s *Store) ensureQuota(incoming int) error {
	if s.quota <= 0 {
		return nil
	}
	var pageCount, pageSize int64
	if err := s.db.Raw("PRAGMA page_count").Scan(&pageCount).Error; err != nil {
		return err
	}
	if err := s.db.Raw("PRAGMA page_size").Scan(&pageSize).Error; err != nil {
		return err
	}
	if pageCount*pageSize+int64(incoming) > s.quota {
		return model.ErrQuotaExceeded
	}
	return nil
}

// notFound переводит gorm-ошибку «нет записи» в доменную.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrNotFound
	}
	return err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrQuotaExceeded) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
