package service

import (
	"context"
	"fmt"

	"WikiKeeper/internal/model"
	"WikiKeeper/internal/remote"
)

// StartRemoteOAuth запускает подключение к удалённому репозиторию.
// Функция возвращается, как только пользователь перенаправлен на сервер
// авторизации; дальше поток продолжает CompleteRemoteOAuth.
func (w *Wiki) StartRemoteOAuth(ctx context.Context, handle string, redirect remote.Redirector) error {
	if w.oauth == nil {
		return model.ErrNotConnected
	}
	return w.oauth.Start(ctx, handle, redirect)
}

// CompleteRemoteOAuth завершает обмен кода на токены и сразу запускает
// первичную выгрузку с PDS. Pull идёт в этой же горутине: вызывающий по
// возврату видит уже слитое состояние.
func (w *Wiki) CompleteRemoteOAuth(ctx context.Context, code, state string) (*model.RemoteSession, error) {
	if w.oauth == nil {
		return nil, model.ErrNotConnected
	}
	sess, err := w.oauth.HandleCallback(ctx, code, state)
	if err != nil {
		return nil, err
	}
	w.appendActivity(model.ActivityInfo, fmt.Sprintf("connected as %s", sess.Handle))
	w.syncer.PullAll(ctx)
	return sess, nil
}

// DisconnectRemote забывает сессию. Локальные данные остаются как есть.
func (w *Wiki) DisconnectRemote() error {
	if w.oauth == nil {
		return nil
	}
	sess, _ := w.store.GetSession()
	if err := w.oauth.Disconnect(); err != nil {
		return err
	}
	if sess != nil {
		w.appendActivity(model.ActivityInfo, fmt.Sprintf("disconnected from %s", sess.Handle))
	}
	return nil
}

// SyncNow запускает полную двустороннюю сверку с PDS.
func (w *Wiki) SyncNow(ctx context.Context) error {
	if _, err := w.store.GetSession(); err != nil {
		return model.ErrNotConnected
	}
	w.syncer.PullAll(ctx)
	return nil
}

// GetFeed возвращает ленту подключённого аккаунта через AppView.
func (w *Wiki) GetFeed(ctx context.Context, limit int) ([]remote.FeedPost, error) {
	if w.client == nil {
		return nil, model.ErrNotConnected
	}
	sess, err := w.store.GetSession()
	if err != nil {
		return nil, model.ErrNotConnected
	}
	return w.client.GetAuthorFeed(ctx, sess.DID, limit)
}
