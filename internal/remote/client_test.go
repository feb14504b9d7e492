package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"WikiKeeper/internal/model"
	reposqlite "WikiKeeper/internal/repo/sqlite"
)

func newClientStore(t *testing.T) *reposqlite.Store {
	t.Helper()
	store, _, err := reposqlite.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestClient_NotConnected(t *testing.T) {
	store := newClientStore(t)
	c := NewClient(http.DefaultClient, store, nil, "http://appview.local")

	_, err := c.PutRecord(context.Background(), model.CollectionArticle, "cats", map[string]string{"key": "cats"})
	assert.ErrorIs(t, err, model.ErrNotConnected)

	err = c.DeleteRecord(context.Background(), model.CollectionArticle, "cats")
	assert.ErrorIs(t, err, model.ErrNotConnected)

	_, err = c.ListRecords(context.Background(), model.CollectionArticle)
	assert.ErrorIs(t, err, model.ErrNotConnected)
}

func TestClient_PutRecordSendsBearerAndPayload(t *testing.T) {
	store := newClientStore(t)
	var gotAuth string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/com.atproto.repo.putRecord", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(map[string]string{"uri": "at://did:plc:me/c/cats", "cid": "bafy"})
	}))
	defer srv.Close()

	_ = store.PutSession(model.RemoteSession{
		DID: "did:plc:me", AccessToken: "tok",
		TokenExpiry: time.Now().Add(time.Hour).UnixMilli(),
		PDSEndpoint: srv.URL,
	})
	c := NewClient(srv.Client(), store, nil, "http://appview.local")

	rec, err := c.PutRecord(context.Background(), model.CollectionArticle, "cats", map[string]string{"key": "cats"})
	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "did:plc:me", gotPayload["repo"])
	assert.Equal(t, model.CollectionArticle, gotPayload["collection"])
	assert.Equal(t, "cats", gotPayload["rkey"])
	assert.Equal(t, "cats", rec.RKey())
}

func TestClient_ListRecordsFollowsCursor(t *testing.T) {
	store := newClientStore(t)
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("cursor") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{{"uri": "at://x/c/a", "value": map[string]string{}}},
				"cursor":  "page2",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{{"uri": "at://x/c/b", "value": map[string]string{}}},
		})
	}))
	defer srv.Close()

	_ = store.PutSession(model.RemoteSession{
		DID: "did:plc:me", AccessToken: "tok",
		TokenExpiry: time.Now().Add(time.Hour).UnixMilli(),
		PDSEndpoint: srv.URL,
	})
	c := NewClient(srv.Client(), store, nil, "http://appview.local")

	recs, err := c.ListRecords(context.Background(), model.CollectionArticle)
	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "a", recs[0].RKey())
	assert.Equal(t, "b", recs[1].RKey())
}

func TestClient_XRPCErrorSurfaced(t *testing.T) {
	store := newClientStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "InvalidRequest", "message": "bad rkey"})
	}))
	defer srv.Close()

	_ = store.PutSession(model.RemoteSession{
		DID: "did:plc:me", AccessToken: "tok",
		TokenExpiry: time.Now().Add(time.Hour).UnixMilli(),
		PDSEndpoint: srv.URL,
	})
	c := NewClient(srv.Client(), store, nil, "http://appview.local")

	err := c.DeleteRecord(context.Background(), model.CollectionArticle, "bad key")
	assert.ErrorContains(t, err, "InvalidRequest")
	assert.ErrorContains(t, err, "bad rkey")
}
