package sync

import (
	"context"
	"encoding/json"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"WikiKeeper/internal/model"
	"WikiKeeper/internal/remote"
	reposqlite "WikiKeeper/internal/repo/sqlite"
)

type putCall struct {
	Collection string
	RKey       string
	Value      json.RawMessage
}

// fakeRemote фиксирует вызовы и отдаёт заранее подготовленные записи.
type fakeRemote struct {
	mu        stdsync.Mutex
	puts      []putCall
	deletes   []string
	records   map[string][]remote.Record
	putErr    error
	deleteErr error
	onPut     func() // выполняется внутри PutRecord, до фиксации вызова
}

func (f *fakeRemote) PutRecord(_ context.Context, collection, rkey string, value any) (*remote.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	if f.onPut != nil {
		f.onPut()
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, putCall{Collection: collection, RKey: rkey, Value: b})
	return &remote.Record{URI: "at://did:plc:test/" + collection + "/" + rkey, Value: b}, nil
}

func (f *fakeRemote) DeleteRecord(_ context.Context, collection, rkey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, collection+"/"+rkey)
	return nil
}

func (f *fakeRemote) ListRecords(_ context.Context, collection string) ([]remote.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[collection], nil
}

func newTestEngine(t *testing.T, online bool) (*Engine, *fakeRemote, *reposqlite.Store) {
	t.Helper()
	st, _, err := reposqlite.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if online {
		sess := model.RemoteSession{
			DID: "did:plc:test", Handle: "ann.example",
			AccessToken: "tok", TokenExpiry: time.Now().Add(time.Hour).UnixMilli(),
			PDSEndpoint: "https://pds.example",
		}
		if err := st.PutSession(sess); err != nil {
			t.Fatalf("put session: %v", err)
		}
	}
	rem := &fakeRemote{records: map[string][]remote.Record{}}
	e := New(st, rem, zap.NewNop().Sugar())
	e.retryInitial = time.Millisecond
	e.retryMax = 1
	return e, rem, st
}

func TestPush_CoalescedDoubleSavePushesLatestOnce(t *testing.T) {
	e, rem, st := newTestEngine(t, true)

	_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "v1", UpdatedAt: 10})
	e.SyncBestEffort(model.CollectionArticle, "cats")
	// второе сохранение до того, как очередь дренирована
	_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "v2", UpdatedAt: 20})
	e.SyncBestEffort(model.CollectionArticle, "cats")

	e.Flush(context.Background())

	assert.Len(t, rem.puts, 1, "постановки одного ключа схлопываются")
	var rec articleRecord
	assert.NoError(t, json.Unmarshal(rem.puts[0].Value, &rec))
	assert.Equal(t, "v2", rec.Content, "в сеть уходит последнее состояние")

	stt, err := st.GetSyncState(model.CollectionArticle, "cats")
	assert.NoError(t, err)
	assert.Equal(t, int64(20), stt.SyncedVersion)
}

func TestPush_MidflightChangeSkipsStaleSyncState(t *testing.T) {
	e, rem, st := newTestEngine(t, true)

	_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "v1", UpdatedAt: 10})
	e.SyncBestEffort(model.CollectionArticle, "cats")
	// локальная запись меняется, пока первый push в полёте
	rem.onPut = func() {
		rem.onPut = nil
		_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "v2", UpdatedAt: 20})
		e.SyncBestEffort(model.CollectionArticle, "cats")
	}

	e.Flush(context.Background())

	assert.Len(t, rem.puts, 2, "изменившаяся в полёте запись уходит повторно")
	stt, err := st.GetSyncState(model.CollectionArticle, "cats")
	assert.NoError(t, err)
	assert.Equal(t, int64(20), stt.SyncedVersion, "устаревший отклик не фиксируется")
}

func TestPush_OfflineMakesNoRemoteCalls(t *testing.T) {
	e, rem, st := newTestEngine(t, false)

	_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "v1", UpdatedAt: 10})
	e.SyncBestEffort(model.CollectionArticle, "cats")
	e.Flush(context.Background())

	assert.Empty(t, rem.puts, "без сессии удалённых вызовов нет")
	_, err := st.GetSyncState(model.CollectionArticle, "cats")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPush_FailureDegradesToActivityLog(t *testing.T) {
	e, rem, st := newTestEngine(t, true)
	rem.putErr = errors.New("pds down")

	_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "v1", UpdatedAt: 10})
	e.SyncBestEffort(model.CollectionArticle, "cats")
	e.Flush(context.Background())

	// локальная копия на месте, ошибка ушла в журнал и статус
	a, err := st.GetArticle("cats")
	assert.NoError(t, err)
	assert.Equal(t, "v1", a.Content)

	state, reason := e.Status(model.CollectionArticle)
	assert.Equal(t, StatusError, state)
	assert.NotEmpty(t, reason)

	activity, err := st.ListActivity(5)
	assert.NoError(t, err)
	assert.NotEmpty(t, activity)
	assert.Equal(t, model.ActivityError, activity[0].Level)
}

func TestTransactionalDelete_NeverSyncedSkipsRemote(t *testing.T) {
	e, rem, _ := newTestEngine(t, false)

	err := e.SyncTransactionalDelete(context.Background(), model.CollectionArticle, "cats")
	assert.NoError(t, err, "несинхронизированная запись удаляется чисто локально")
	assert.Empty(t, rem.deletes)
}

func TestTransactionalDelete_OfflineSyncedFails(t *testing.T) {
	e, _, st := newTestEngine(t, false)
	_ = st.PutSyncState(model.SyncState{Collection: model.CollectionArticle, Key: "cats", RKey: "cats", SyncedVersion: 10})

	err := e.SyncTransactionalDelete(context.Background(), model.CollectionArticle, "cats")
	var rde *model.RemoteDeleteError
	assert.ErrorAs(t, err, &rde)
	assert.ErrorIs(t, err, model.ErrNotConnected)
}

func TestTransactionalDelete_RemoteFailureSurfaces(t *testing.T) {
	e, rem, st := newTestEngine(t, true)
	_ = st.PutSyncState(model.SyncState{Collection: model.CollectionArticle, Key: "cats", RKey: "cats", SyncedVersion: 10})
	rem.deleteErr = errors.New("pds down")

	err := e.SyncTransactionalDelete(context.Background(), model.CollectionArticle, "cats")
	var rde *model.RemoteDeleteError
	assert.ErrorAs(t, err, &rde)

	// состояние синхронизации не тронуто
	_, err = st.GetSyncState(model.CollectionArticle, "cats")
	assert.NoError(t, err)
}

func TestTransactionalDelete_SuccessClearsStateAndPending(t *testing.T) {
	e, rem, st := newTestEngine(t, true)
	_ = st.PutSyncState(model.SyncState{Collection: model.CollectionArticle, Key: "cats", RKey: "cats", SyncedVersion: 10})
	e.SyncBestEffort(model.CollectionArticle, "cats") // отложенный push отменяется

	err := e.SyncTransactionalDelete(context.Background(), model.CollectionArticle, "cats")
	assert.NoError(t, err)
	assert.Equal(t, []string{model.CollectionArticle + "/cats"}, rem.deletes)

	_, err = st.GetSyncState(model.CollectionArticle, "cats")
	assert.ErrorIs(t, err, model.ErrNotFound)

	e.Flush(context.Background())
	assert.Empty(t, rem.puts, "отменённый push не уходит в сеть")
}

func remoteArticle(t *testing.T, rkey string, rec articleRecord) remote.Record {
	t.Helper()
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	return remote.Record{URI: "at://did:plc:test/" + model.CollectionArticle + "/" + rkey, Value: b}
}

func TestPullAll_RemoteNewerWinsLocalGoesToHistory(t *testing.T) {
	e, rem, st := newTestEngine(t, true)

	_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "local", CreatedAt: 1, UpdatedAt: 10})
	rem.records[model.CollectionArticle] = []remote.Record{
		remoteArticle(t, "cats", articleRecord{Key: "cats", Title: "Cats", Content: "remote", CreatedAt: 1, UpdatedAt: 20, IsPublic: true}),
	}

	e.PullAll(context.Background())

	a, err := st.GetArticle("cats")
	assert.NoError(t, err)
	assert.Equal(t, "remote", a.Content)
	assert.Equal(t, int64(20), a.UpdatedAt)

	// проигравшая локальная версия сохранена в истории
	hist, err := st.ListHistory("cats")
	assert.NoError(t, err)
	assert.Len(t, hist, 1)
	assert.Equal(t, "local", hist[0].Content)

	stt, err := st.GetSyncState(model.CollectionArticle, "cats")
	assert.NoError(t, err)
	assert.Equal(t, int64(20), stt.SyncedVersion)
}

func TestPullAll_LocalNewerGetsPushed(t *testing.T) {
	e, rem, st := newTestEngine(t, true)

	_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "local", CreatedAt: 1, UpdatedAt: 30})
	rem.records[model.CollectionArticle] = []remote.Record{
		remoteArticle(t, "cats", articleRecord{Key: "cats", Title: "Cats", Content: "remote", CreatedAt: 1, UpdatedAt: 20, IsPublic: true}),
	}

	e.PullAll(context.Background())

	a, err := st.GetArticle("cats")
	assert.NoError(t, err)
	assert.Equal(t, "local", a.Content, "более свежая локальная копия не перезаписывается")

	assert.Len(t, rem.puts, 1)
	var rec articleRecord
	assert.NoError(t, json.Unmarshal(rem.puts[0].Value, &rec))
	assert.Equal(t, "local", rec.Content)
}

func TestPullAll_EqualVersionsInSync(t *testing.T) {
	e, rem, st := newTestEngine(t, true)

	_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "same", CreatedAt: 1, UpdatedAt: 20})
	rem.records[model.CollectionArticle] = []remote.Record{
		remoteArticle(t, "cats", articleRecord{Key: "cats", Title: "Cats", Content: "same", CreatedAt: 1, UpdatedAt: 20, IsPublic: true}),
	}

	e.PullAll(context.Background())

	assert.Empty(t, rem.puts, "равные версии не гоняются по сети")
	hist, err := st.ListHistory("cats")
	assert.NoError(t, err)
	assert.Empty(t, hist)

	stt, err := st.GetSyncState(model.CollectionArticle, "cats")
	assert.NoError(t, err)
	assert.Equal(t, int64(20), stt.SyncedVersion)
}

func TestPullAll_LocalOnlyRecordsEnqueued(t *testing.T) {
	e, rem, st := newTestEngine(t, true)

	_ = st.PutArticle(model.Article{Key: "onlylocal", Title: "L", Content: "x", UpdatedAt: 5})

	e.PullAll(context.Background())

	assert.Len(t, rem.puts, 1)
	assert.Equal(t, "onlylocal", rem.puts[0].RKey)
}

func TestPullAll_AppliesRemoteOnlyRecords(t *testing.T) {
	e, rem, st := newTestEngine(t, true)

	rem.records[model.CollectionArticle] = []remote.Record{
		remoteArticle(t, "fresh", articleRecord{Key: "fresh", Title: "Fresh", Content: "new", CreatedAt: 1, UpdatedAt: 9, IsPublic: false}),
	}

	e.PullAll(context.Background())

	a, err := st.GetArticle("fresh")
	assert.NoError(t, err)
	assert.Equal(t, "new", a.Content)
	m, err := st.GetArticleMeta("fresh")
	assert.NoError(t, err)
	assert.False(t, m.IsPublic, "метаданные приезжают внутри той же записи")
}

func TestRkeyFor_EncodesHabitNamesOnly(t *testing.T) {
	assert.Equal(t, "cats", rkeyFor(model.CollectionArticle, "cats"))
	assert.Equal(t, "2026-08-31", rkeyFor(model.CollectionHabitDay, "2026-08-31"))
	// произвольное имя привычки кодируется без паддинга
	assert.Equal(t, "0LHQtdCz", rkeyFor(model.CollectionHabit, "бег"))
}

func TestRun_BackgroundWorkerDrainsQueue(t *testing.T) {
	e, rem, st := newTestEngine(t, true)
	_ = st.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "v1", UpdatedAt: 10})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run(ctx)
	}()

	e.SyncBestEffort(model.CollectionArticle, "cats")
	assert.Eventually(t, func() bool {
		rem.mu.Lock()
		defer rem.mu.Unlock()
		return len(rem.puts) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
}
