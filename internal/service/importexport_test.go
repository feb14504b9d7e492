package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"WikiKeeper/internal/model"
)

func TestExportImport_OwnExportIsNoop(t *testing.T) {
	w, st := newTestWiki(t, &spySyncer{})

	_, err := w.SaveArticle("cats", "Cats", "meow")
	assert.NoError(t, err)
	_, err = w.SaveArticle("dogs", "Dogs", "woof")
	assert.NoError(t, err)

	doc, err := w.ExportArticles()
	assert.NoError(t, err)
	assert.Len(t, doc, 2)

	sum, err := w.ImportArticles(doc)
	assert.NoError(t, err)
	assert.Equal(t, 0, sum.Created)
	assert.Equal(t, 0, sum.Updated)
	assert.Equal(t, 2, sum.Skipped)

	// история не распухла от импорта собственного экспорта
	stored, err := st.ListHistory("cats")
	assert.NoError(t, err)
	assert.Len(t, stored, 0)
}

func TestImport_CreatesMissingWithoutHistory(t *testing.T) {
	w, st := newTestWiki(t, &spySyncer{})

	doc := model.ExportDocument{
		"birds": {Title: "Birds", Content: "tweet", CreatedAt: 100, UpdatedAt: 200},
	}
	sum, err := w.ImportArticles(doc)
	assert.NoError(t, err)
	assert.Equal(t, 1, sum.Created)

	a, err := w.GetArticle("birds")
	assert.NoError(t, err)
	assert.Equal(t, int64(200), a.UpdatedAt, "метки времени берутся из документа")

	stored, err := st.ListHistory("birds")
	assert.NoError(t, err)
	assert.Len(t, stored, 0)
}

func TestImport_NewerWinsOlderSkipped(t *testing.T) {
	w, _ := newTestWiki(t, &spySyncer{})

	local, err := w.SaveArticle("cats", "Cats", "local")
	assert.NoError(t, err)

	// более старый входящий никогда не перезаписывает
	older := model.ExportDocument{
		"cats": {Title: "Old", Content: "stale", UpdatedAt: local.UpdatedAt - 1000},
	}
	sum, err := w.ImportArticles(older)
	assert.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	a, _ := w.GetArticle("cats")
	assert.Equal(t, "local", a.Content)

	// более свежий — перезаписывает, старое состояние уходит в историю
	newer := model.ExportDocument{
		"cats": {Title: "New", Content: "fresh", UpdatedAt: local.UpdatedAt + 1000},
	}
	sum, err = w.ImportArticles(newer)
	assert.NoError(t, err)
	assert.Equal(t, 1, sum.Updated)

	a, _ = w.GetArticle("cats")
	assert.Equal(t, "fresh", a.Content)
	hist, err := w.GetArticleHistory("cats")
	assert.NoError(t, err)
	assert.Len(t, hist, 2)
	assert.Equal(t, "local", hist[1].Content)

	// импорт идемпотентен
	sum, err = w.ImportArticles(newer)
	assert.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
}

func TestImport_QuotaRejectedUpdateLeavesNoPartialWrite(t *testing.T) {
	dir := t.TempDir()
	w, st := newQuotaWiki(t, dir, 0, &spySyncer{})

	local, err := w.SaveArticle("cats", "Cats", "local")
	assert.NoError(t, err)
	assert.NoError(t, st.Close())

	// квота меньше занятого места: слияние отклоняется целиком
	w, st = newQuotaWiki(t, dir, 1, &spySyncer{})
	doc := model.ExportDocument{
		"cats": {Title: "New", Content: "fresh", UpdatedAt: local.UpdatedAt + 1000},
	}
	_, err = w.ImportArticles(doc)
	assert.ErrorIs(t, err, model.ErrQuotaExceeded)

	a, _ := st.GetArticle("cats")
	assert.Equal(t, "local", a.Content, "предыдущее состояние не тронуто")
	stored, err := st.ListHistory("cats")
	assert.NoError(t, err)
	assert.Len(t, stored, 0, "отклонённое слияние не оставляет снимка в истории")
}

func TestImport_SkipsInvalidKeys(t *testing.T) {
	w, _ := newTestWiki(t, &spySyncer{})

	doc := model.ExportDocument{
		"Bad Key": {Title: "x", Content: "y", UpdatedAt: 1},
		"good":    {Title: "x", Content: "y", UpdatedAt: 1},
	}
	sum, err := w.ImportArticles(doc)
	assert.NoError(t, err)
	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, 1, sum.Skipped)
}
