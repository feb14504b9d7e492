package sqlite

import (
	"errors"
	"os"
	"testing"

	"WikiKeeper/internal/model"
)

// openTestStore открывает свежую БД в temp-каталоге.
func openTestStore(t *testing.T, quota int64) *Store {
	t.Helper()
	s, dbPath, err := Open(t.TempDir(), quota)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
	return s
}

func TestOpen_EmptyDirFails(t *testing.T) {
	if _, _, err := Open("", 0); err == nil {
		t.Fatal("expected error for empty data dir")
	}
}

func TestArticle_PutGetList(t *testing.T) {
	s := openTestStore(t, 0)

	// пустая БД → список пуст
	list, err := s.ListArticles()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	if err := s.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "meow", CreatedAt: 10, UpdatedAt: 10}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutArticle(model.Article{Key: "dogs", Title: "Dogs", Content: "woof", CreatedAt: 20, UpdatedAt: 20}); err != nil {
		t.Fatalf("put: %v", err)
	}

	a, err := s.GetArticle("cats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Title != "Cats" || a.UpdatedAt != 10 {
		t.Fatalf("unexpected article: %+v", a)
	}

	// перезапись тем же ключом
	if err := s.PutArticle(model.Article{Key: "cats", Title: "Cats!", Content: "meow!", CreatedAt: 10, UpdatedAt: 30}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	list, err = s.ListArticles()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(list))
	}
	// свежие первыми
	if list[0].Key != "cats" {
		t.Fatalf("expected cats first (updated 30), got %q", list[0].Key)
	}

	if _, err := s.GetArticle("nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistory_AppendAndOrder(t *testing.T) {
	s := openTestStore(t, 0)

	for _, ts := range []int64{5, 15, 10} {
		if err := s.AppendHistory(model.HistoryEntry{ArticleKey: "cats", Timestamp: ts, Title: "t", Content: "c"}); err != nil {
			t.Fatalf("append %d: %v", ts, err)
		}
	}
	// повторная вставка того же снимка не падает и не дублирует
	if err := s.AppendHistory(model.HistoryEntry{ArticleKey: "cats", Timestamp: 10, Title: "other", Content: "x"}); err != nil {
		t.Fatalf("duplicate append: %v", err)
	}

	hist, err := s.ListHistory("cats")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(hist))
	}
	if hist[0].Timestamp != 15 || hist[2].Timestamp != 5 {
		t.Fatalf("wrong order: %+v", hist)
	}
	// DoNothing: оригинальный снимок не перезаписан
	e, err := s.GetHistoryEntry("cats", 10)
	if err != nil {
		t.Fatal(err)
	}
	if e.Title != "t" {
		t.Fatalf("snapshot overwritten: %+v", e)
	}
}

func TestDeleteArticle_CascadesReferences(t *testing.T) {
	s := openTestStore(t, 0)

	if err := s.PutArticle(model.Article{Key: "cats", Title: "Cats", UpdatedAt: 1}); err != nil {
		t.Fatal(err)
	}
	_ = s.PutArticleMeta(model.ArticleMeta{Key: "cats", IsPublic: true})
	_ = s.AppendHistory(model.HistoryEntry{ArticleKey: "cats", Timestamp: 1})
	_ = s.AddBookmark("cats")
	_ = s.PutPin(model.Pin{Key: "cats"})
	_ = s.PutDraft(model.Draft{Key: "cats", Title: "d"})
	_ = s.PutComment(model.Comment{ID: "c1", ArticleKey: "cats", Text: "hi", Timestamp: 1})

	if err := s.DeleteArticle("cats"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetArticle("cats"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("article must be gone, got %v", err)
	}
	if hist, _ := s.ListHistory("cats"); len(hist) != 0 {
		t.Fatalf("history must be gone, got %d", len(hist))
	}
	if bms, _ := s.ListBookmarks(); len(bms) != 0 {
		t.Fatalf("bookmark must be gone")
	}
	if pins, _ := s.ListPins(); len(pins) != 0 {
		t.Fatalf("pin must be gone")
	}
	if comments, _ := s.ListComments("cats"); len(comments) != 0 {
		t.Fatalf("comments must be gone")
	}
	if _, err := s.GetDraft("cats"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("draft must be gone, got %v", err)
	}
}

func TestQuota_RejectsOversizedWrite(t *testing.T) {
	// квота меньше размера пустой БД: любая запись контента отклоняется
	s := openTestStore(t, 1)

	err := s.PutArticle(model.Article{Key: "big", Title: "t", Content: "content", UpdatedAt: 1})
	if !errors.Is(err, model.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	// предыдущее состояние не тронуто
	if _, err := s.GetArticle("big"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("article must not exist after rejected write, got %v", err)
	}
}

func TestQuota_RejectedOverwriteWritesNoHistory(t *testing.T) {
	// статья записана без квоты, затем БД переоткрыта с квотой меньше
	// текущего размера файла: перезапись обязана отклониться целиком
	dir := t.TempDir()
	s, _, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := s.PutArticle(model.Article{Key: "cats", Title: "Cats", Content: "v1", UpdatedAt: 10}); err != nil {
		t.Fatalf("seed article: %v", err)
	}
	_ = s.Close()

	s, _, err = Open(dir, 1)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	err = s.PutArticleWithHistory(
		model.Article{Key: "cats", Title: "Cats", Content: "v2", UpdatedAt: 20},
		model.HistoryEntry{ArticleKey: "cats", Timestamp: 20, Title: "Cats", Content: "v1"},
	)
	if !errors.Is(err, model.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	// ни перезаписи, ни осиротевшего снимка в истории
	a, err := s.GetArticle("cats")
	if err != nil || a.Content != "v1" {
		t.Fatalf("article must keep old content, got %+v, %v", a, err)
	}
	if hist, _ := s.ListHistory("cats"); len(hist) != 0 {
		t.Fatalf("history must stay empty after rejected write, got %d entries", len(hist))
	}
}

func TestDeleteAlbum_StripsMembershipKeepsItems(t *testing.T) {
	s := openTestStore(t, 0)

	_ = s.PutAlbum(model.Album{ID: "alb1", Name: "trip", UpdatedAt: 1})
	_ = s.PutArchiveItem(model.ArchiveItem{ID: "it1", Type: "image", URL: "http://x/1.jpg", AlbumIDs: []string{"alb1", "alb2"}, UpdatedAt: 1})
	_ = s.PutArchiveItem(model.ArchiveItem{ID: "it2", Type: "image", URL: "http://x/2.jpg", UpdatedAt: 1})

	if err := s.DeleteAlbum("alb1"); err != nil {
		t.Fatalf("delete album: %v", err)
	}

	it, err := s.GetArchiveItem("it1")
	if err != nil {
		t.Fatalf("item must survive: %v", err)
	}
	if len(it.AlbumIDs) != 1 || it.AlbumIDs[0] != "alb2" {
		t.Fatalf("membership not stripped: %v", it.AlbumIDs)
	}
	if it.UpdatedAt <= 1 {
		t.Fatalf("membership change must bump updated_at, got %d", it.UpdatedAt)
	}
	if _, err := s.GetAlbum("alb1"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("album must be gone, got %v", err)
	}
}

func TestDeleteHabit_StripsDaysDropsEmpty(t *testing.T) {
	s := openTestStore(t, 0)

	_ = s.PutHabit(model.Habit{Name: "run"})
	_ = s.PutHabit(model.Habit{Name: "read"})
	_ = s.PutHabitDay(model.HabitDay{Date: "2026-08-30", Habits: []string{"run", "read"}, UpdatedAt: 1})
	_ = s.PutHabitDay(model.HabitDay{Date: "2026-08-31", Habits: []string{"run"}, UpdatedAt: 1})

	if err := s.DeleteHabit("run"); err != nil {
		t.Fatalf("delete habit: %v", err)
	}

	d, err := s.GetHabitDay("2026-08-30")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Habits) != 1 || d.Habits[0] != "read" {
		t.Fatalf("day not stripped: %v", d.Habits)
	}
	// день, оставшийся пустым, удаляется
	if _, err := s.GetHabitDay("2026-08-31"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("empty day must be removed, got %v", err)
	}
}

func TestActivity_TrimsToCap(t *testing.T) {
	s := openTestStore(t, 0)

	for i := 0; i < 210; i++ {
		if err := s.AppendActivity(model.ActivityInfo, "msg"); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	all, err := s.ListActivity(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 200 {
		t.Fatalf("expected 200 entries after trim, got %d", len(all))
	}
	last, err := s.ListActivity(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(last))
	}
}

func TestSessionSlot_SingleRow(t *testing.T) {
	s := openTestStore(t, 0)

	if _, err := s.GetSession(); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.PutSession(model.RemoteSession{DID: "did:plc:abc", Handle: "ann.example"}); err != nil {
		t.Fatal(err)
	}
	// повторная запись перезаписывает слот, а не добавляет вторую строку
	if err := s.PutSession(model.RemoteSession{DID: "did:plc:xyz", Handle: "bob.example"}); err != nil {
		t.Fatal(err)
	}
	sess, err := s.GetSession()
	if err != nil {
		t.Fatal(err)
	}
	if sess.DID != "did:plc:xyz" {
		t.Fatalf("slot not overwritten: %+v", sess)
	}
	if err := s.ClearSession(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSession(); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("session must be cleared, got %v", err)
	}
}

func TestSyncState_RoundtripAndDelete(t *testing.T) {
	s := openTestStore(t, 0)

	st := model.SyncState{Collection: model.CollectionArticle, Key: "cats", RKey: "cats", SyncedAt: 1, SyncedVersion: 10}
	if err := s.PutSyncState(st); err != nil {
		t.Fatal(err)
	}
	st.SyncedVersion = 20
	if err := s.PutSyncState(st); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSyncState(model.CollectionArticle, "cats")
	if err != nil {
		t.Fatal(err)
	}
	if got.SyncedVersion != 20 {
		t.Fatalf("expected upsert to 20, got %d", got.SyncedVersion)
	}
	list, err := s.ListSyncStates(model.CollectionArticle)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 state, got %d", len(list))
	}
	if err := s.DeleteSyncState(model.CollectionArticle, "cats"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSyncState(model.CollectionArticle, "cats"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
