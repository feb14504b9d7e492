package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"WikiKeeper/internal/model"
	"WikiKeeper/internal/remote"
	"WikiKeeper/internal/repo"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Remote — срез клиента удалённого репозитория, нужный движку.
type Remote interface {
	PutRecord(ctx context.Context, collection, rkey string, value any) (*remote.Record, error)
	DeleteRecord(ctx context.Context, collection, rkey string) error
	ListRecords(ctx context.Context, collection string) ([]remote.Record, error)
}

// Состояния коллекции с точки зрения движка.
const (
	StatusIdle        = "idle"
	StatusPushing     = "pushing"
	StatusPulling     = "pulling"
	StatusReconciling = "reconciling"
	StatusError       = "error"
)

type ref struct {
	Collection string
	Key        string
}

// Engine согласует локальное хранилище с удалённым репозиторием.
// Локальный коммит всегда безусловен; единственная операция, где удалённый
// отказ фатален — транзакционное удаление.
type Engine struct {
	store repo.Store
	rem   Remote
	log   *zap.SugaredLogger

	mu       stdsync.Mutex
	pending  map[ref]struct{}
	inflight map[ref]struct{}
	wake     chan struct{}

	stateMu stdsync.Mutex
	states  map[string]string
	reasons map[string]string

	// параметры ретраев best-effort push (переопределяются в тестах)
	retryInitial time.Duration
	retryMax     uint64
}

// New создаёт движок синхронизации.
func New(store repo.Store, rem Remote, log *zap.SugaredLogger) *Engine {
	return &Engine{
		store:        store,
		rem:          rem,
		log:          log,
		pending:      make(map[ref]struct{}),
		inflight:     make(map[ref]struct{}),
		wake:         make(chan struct{}, 1),
		states:       make(map[string]string),
		reasons:      make(map[string]string),
		retryInitial: 500 * time.Millisecond,
		retryMax:     3,
	}
}

// SyncBestEffort ставит запись в очередь push и возвращается немедленно.
// Повторные постановки того же ключа схлопываются в один слот: в сеть уходит
// только последнее локальное состояние, никогда не устаревший промежуток.
func (e *Engine) SyncBestEffort(collection, key string) {
	e.mu.Lock()
	e.pending[ref{collection, key}] = struct{}{}
	e.mu.Unlock()
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Run — фоновый воркер: дренирует очередь по пробуждению до отмены контекста.
func (e *Engine) Run(ctx context.Context) {
	for {
		e.drain(ctx)
		select {
		case <-ctx.Done():
			return
		case <-e.wake:
		}
	}
}

// Flush синхронно дренирует очередь. Ошибки push деградируют в журнал
// активности и Flush их не возвращает: «local-first» означает, что локальный
// успех уже состоялся.
func (e *Engine) Flush(ctx context.Context) {
	e.drain(ctx)
}

// drain обрабатывает отложенные ключи. На один ключ — не более одной
// операции в полёте; ключ, попавший в очередь во время обработки, будет
// обработан следующим заходом с уже новым состоянием.
func (e *Engine) drain(ctx context.Context) {
	for {
		r, ok := e.takeOne()
		if !ok {
			return
		}
		e.pushOne(ctx, r)
		e.mu.Lock()
		delete(e.inflight, r)
		e.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
	}
}

func (e *Engine) takeOne() (ref, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for r := range e.pending {
		if _, busy := e.inflight[r]; busy {
			continue
		}
		delete(e.pending, r)
		e.inflight[r] = struct{}{}
		return r, true
	}
	return ref{}, false
}

// pushOne отправляет текущее локальное состояние одной записи.
// Без сессии удалённый вызов не предпринимается вовсе.
func (e *Engine) pushOne(ctx context.Context, r ref) {
	if _, err := e.store.GetSession(); err != nil {
		return // offline: локальный коммит уже состоялся, push подождёт подключения
	}

	value, version, found, err := e.buildPayload(r.Collection, r.Key)
	if err != nil {
		e.degrade(r, err)
		return
	}
	if !found {
		return // запись успела исчезнуть локально
	}

	e.setStatus(r.Collection, StatusPushing, "")
	op := func() error {
		_, err := e.rem.PutRecord(ctx, r.Collection, rkeyFor(r.Collection, r.Key), value)
		if errors.Is(err, model.ErrNotConnected) {
			return backoff.Permanent(err)
		}
		return err
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.retryInitial
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, e.retryMax), ctx)); err != nil {
		e.degrade(r, &model.RemoteSyncError{Op: "push", Collection: r.Collection, Key: r.Key, Err: err})
		return
	}

	// отклик мог устареть: если запись успела измениться или исчезнуть,
	// пока шёл push, состояние зафиксирует следующий заход из очереди
	if _, cur, found, err := e.buildPayload(r.Collection, r.Key); err != nil || !found || cur != version {
		e.setStatus(r.Collection, StatusIdle, "")
		return
	}

	st := model.SyncState{
		Collection:    r.Collection,
		Key:           r.Key,
		RKey:          rkeyFor(r.Collection, r.Key),
		SyncedAt:      time.Now().UnixMilli(),
		SyncedVersion: version,
	}
	if err := e.store.PutSyncState(st); err != nil {
		e.log.Errorw("persist sync state", "collection", r.Collection, "key", r.Key, "error", err)
	}
	e.setStatus(r.Collection, StatusIdle, "")
}

// SyncTransactionalDelete удаляет удалённую копию записи до локального
// коммита. Если запись когда-либо была синхронизирована и удалённое удаление
// не прошло — ошибка доводится до вызывающего, локально ничего не меняется.
func (e *Engine) SyncTransactionalDelete(ctx context.Context, collection, key string) error {
	st, err := e.store.GetSyncState(collection, key)
	if errors.Is(err, model.ErrNotFound) {
		return nil // никогда не синкалась — удалять наружу нечего
	}
	if err != nil {
		return err
	}
	if _, err := e.store.GetSession(); err != nil {
		return &model.RemoteDeleteError{Collection: collection, Key: key, Err: model.ErrNotConnected}
	}
	if err := e.rem.DeleteRecord(ctx, collection, st.RKey); err != nil {
		return &model.RemoteDeleteError{Collection: collection, Key: key, Err: err}
	}
	if err := e.store.DeleteSyncState(collection, key); err != nil {
		return err
	}
	// отменяем возможный отложенный push этой же записи
	e.mu.Lock()
	delete(e.pending, ref{collection, key})
	e.mu.Unlock()
	return nil
}

// PullAll выполняет полный pull всех синхронизируемых коллекций — триггер
// (ре)подключения. Конфликты решаются по позднему updatedAt; локальные
// записи, которых нет снаружи или которые новее, ставятся в очередь push.
func (e *Engine) PullAll(ctx context.Context) {
	for _, collection := range model.SyncedCollections {
		e.setStatus(collection, StatusPulling, "")
		records, err := e.rem.ListRecords(ctx, collection)
		if err != nil {
			e.degrade(ref{Collection: collection}, &model.RemoteSyncError{Op: "pull", Collection: collection, Err: err})
			continue
		}
		e.setStatus(collection, StatusReconciling, "")
		remoteKeys := make(map[string]struct{}, len(records))
		for _, rec := range records {
			key, err := e.reconcileRecord(collection, rec)
			if err != nil {
				e.log.Warnw("skip malformed remote record", "collection", collection, "uri", rec.URI, "error", err)
				continue
			}
			remoteKeys[key] = struct{}{}
		}
		e.enqueueLocalOnly(collection, remoteKeys)
		e.setStatus(collection, StatusIdle, "")
	}
	e.Flush(ctx)
}

// reconcileRecord применяет одну удалённую запись и фиксирует её состояние.
func (e *Engine) reconcileRecord(collection string, rec remote.Record) (string, error) {
	key, version, outcome, err := e.applyRemote(collection, json.RawMessage(rec.Value))
	if err != nil {
		return "", err
	}
	switch outcome {
	case appliedRemote, inSync:
		st := model.SyncState{
			Collection:    collection,
			Key:           key,
			RKey:          rec.RKey(),
			SyncedAt:      time.Now().UnixMilli(),
			SyncedVersion: version,
		}
		if err := e.store.PutSyncState(st); err != nil {
			return key, err
		}
	case localNewer:
		// локальная копия новее: отправляем её, состояние зафиксирует push
		e.SyncBestEffort(collection, key)
	}
	return key, nil
}

// enqueueLocalOnly ставит в очередь локальные записи, отсутствующие снаружи.
func (e *Engine) enqueueLocalOnly(collection string, remoteKeys map[string]struct{}) {
	keys, err := e.localKeys(collection)
	if err != nil {
		e.log.Warnw("enumerate local keys", "collection", collection, "error", err)
		return
	}
	for _, k := range keys {
		if _, ok := remoteKeys[k]; !ok {
			e.SyncBestEffort(collection, k)
		}
	}
}

func (e *Engine) localKeys(collection string) ([]string, error) {
	var keys []string
	switch collection {
	case model.CollectionArticle:
		articles, err := e.store.ListArticles()
		if err != nil {
			return nil, err
		}
		for _, a := range articles {
			keys = append(keys, a.Key)
		}
	case model.CollectionArchiveItem:
		items, err := e.store.ListArchiveItems()
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			keys = append(keys, it.ID)
		}
	case model.CollectionAlbum:
		albums, err := e.store.ListAlbums()
		if err != nil {
			return nil, err
		}
		for _, a := range albums {
			keys = append(keys, a.ID)
		}
	case model.CollectionHabit:
		habits, err := e.store.ListHabits()
		if err != nil {
			return nil, err
		}
		for _, h := range habits {
			keys = append(keys, h.Name)
		}
	case model.CollectionHabitDay:
		days, err := e.store.ListHabitDays()
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			keys = append(keys, d.Date)
		}
	case model.CollectionComment:
		articles, err := e.store.ListArticles()
		if err != nil {
			return nil, err
		}
		for _, a := range articles {
			comments, err := e.store.ListComments(a.Key)
			if err != nil {
				return nil, err
			}
			for _, c := range comments {
				keys = append(keys, c.ID)
			}
		}
	case model.CollectionBookmark:
		bms, err := e.store.ListBookmarks()
		if err != nil {
			return nil, err
		}
		for _, b := range bms {
			keys = append(keys, b.Key)
		}
	case model.CollectionPin:
		pins, err := e.store.ListPins()
		if err != nil {
			return nil, err
		}
		for _, p := range pins {
			keys = append(keys, p.Key)
		}
	}
	return keys, nil
}

// Status возвращает состояние коллекции и причину последней ошибки.
func (e *Engine) Status(collection string) (string, string) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	st, ok := e.states[collection]
	if !ok {
		return StatusIdle, ""
	}
	return st, e.reasons[collection]
}

func (e *Engine) setStatus(collection, status, reason string) {
	e.stateMu.Lock()
	e.states[collection] = status
	e.reasons[collection] = reason
	e.stateMu.Unlock()
}

// degrade фиксирует деградацию: лог, журнал активности, состояние Error.
// Локальное состояние при этом не трогается.
func (e *Engine) degrade(r ref, err error) {
	e.log.Warnw("sync degraded", "collection", r.Collection, "key", r.Key, "error", err)
	msg := fmt.Sprintf("sync: %v", err)
	if aerr := e.store.AppendActivity(model.ActivityError, msg); aerr != nil {
		e.log.Errorw("append activity", "error", aerr)
	}
	e.setStatus(r.Collection, StatusError, err.Error())
}
