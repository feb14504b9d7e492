// Package bootstrap собирает граф зависимостей CLI: локальное хранилище,
// удалённый клиент, движок синхронизации и сервисный фасад.
package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"WikiKeeper/internal/config"
	"WikiKeeper/internal/remote"
	"WikiKeeper/internal/repo/sqlite"
	"WikiKeeper/internal/service"
	wikisync "WikiKeeper/internal/sync"
)

// App — всё, что нужно команде для работы.
type App struct {
	Wiki   *service.Wiki
	OAuth  *remote.OAuthManager
	Engine *wikisync.Engine
	DBPath string
}

// OpenWiki открывает хранилище в cfg.DataDir, выполняет миграции и собирает
// сервис. Возвращает (app, cleanup, error); cleanup обязателен после работы,
// иначе соединение с БД останется висеть.
func OpenWiki(cfg *config.Config, log *zap.SugaredLogger) (*App, func() error, error) {
	store, dbPath, err := sqlite.Open(cfg.DataDir, cfg.QuotaBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("migrate local store: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resolver := &remote.IdentityResolver{
		HTTP:         httpClient,
		AppViewURL:   cfg.AppViewURL,
		DirectoryURL: cfg.PLCDirectoryURL,
	}
	oauth := remote.NewOAuthManager(httpClient, store, resolver,
		cfg.OAuthClientID, remote.CallbackURI(cfg.CallbackPort), log)
	client := remote.NewClient(httpClient, store, oauth, cfg.AppViewURL)
	engine := wikisync.New(store, client, log)
	wiki := service.NewWiki(store, engine, oauth, client, log)

	app := &App{Wiki: wiki, OAuth: oauth, Engine: engine, DBPath: dbPath}
	cleanup := func() error { return store.Close() }
	return app, cleanup, nil
}
