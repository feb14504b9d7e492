package service

import (
	"context"
	"regexp"
	"time"

	"WikiKeeper/internal/model"
	"WikiKeeper/internal/remote"
	"WikiKeeper/internal/repo"

	"go.uber.org/zap"
)

// Syncer — контракт движка синхронизации, видимый сервису. Две операции —
// умышленно два разных класса: best-effort никогда не блокирует и не ломает
// локальный коммит, транзакционное удаление обязано пройти наружу до него.
type Syncer interface {
	SyncBestEffort(collection, key string)
	SyncTransactionalDelete(ctx context.Context, collection, key string) error
	PullAll(ctx context.Context)
	Status(collection string) (string, string)
}

// noopSyncer используется, когда движок не подключён (чисто локальный режим).
type noopSyncer struct{}

func (noopSyncer) SyncBestEffort(string, string) {}
func (noopSyncer) SyncTransactionalDelete(context.Context, string, string) error {
	return nil
}
func (noopSyncer) PullAll(context.Context)        {}
func (noopSyncer) Status(string) (string, string) { return "idle", "" }

// Wiki — фасад хранилища для слоя представления: единственный источник правды.
// Все вызовы синхронны с точки зрения вызывающего; сеть прячется за Syncer.
type Wiki struct {
	store  repo.Store
	syncer Syncer
	oauth  *remote.OAuthManager
	client *remote.Client
	log    *zap.SugaredLogger
}

// NewWiki создаёт сервис. oauth и client могут быть nil — тогда удалённые
// операции недоступны, всё остальное работает локально.
func NewWiki(store repo.Store, syncer Syncer, oauth *remote.OAuthManager, client *remote.Client, log *zap.SugaredLogger) *Wiki {
	if syncer == nil {
		syncer = noopSyncer{}
	}
	return &Wiki{store: store, syncer: syncer, oauth: oauth, client: client, log: log}
}

var keyRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// validateKey проверяет, что ключ статьи безопасен как slug и как record key.
func validateKey(key string) error {
	if key == "" {
		return &model.ValidationError{Field: "key", Reason: "is required"}
	}
	if !keyRe.MatchString(key) {
		return &model.ValidationError{Field: "key", Reason: "allowed: lowercase letters, digits, . _ -"}
	}
	return nil
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// bumpAfter возвращает метку «сейчас», гарантированно большую prev.
// Нужна, чтобы две записи подряд в одну миллисекунду не совпали версиями.
func bumpAfter(prev int64) int64 {
	now := nowMillis()
	if now <= prev {
		return prev + 1
	}
	return now
}
