package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPins_OrderAndDedupe(t *testing.T) {
	w, _ := newTestWiki(t, &spySyncer{})

	_, err := w.SaveArticle("cats", "Cats", "meow")
	assert.NoError(t, err)
	_, err = w.SaveArticle("dogs", "Dogs", "woof")
	assert.NoError(t, err)

	assert.NoError(t, w.PinArticle("cats"))
	assert.NoError(t, w.PinArticle("dogs"))
	assert.NoError(t, w.PinArticle("cats")) // повтор — no-op

	pins, err := w.GetPins()
	assert.NoError(t, err)
	assert.Len(t, pins, 2)
	assert.Equal(t, "cats", pins[0].Key)
	assert.Equal(t, "dogs", pins[1].Key)

	assert.NoError(t, w.UnpinArticle(context.Background(), "cats"))
	pins, err = w.GetPins()
	assert.NoError(t, err)
	assert.Len(t, pins, 1)
}

func TestBookmarks_RequireExistingArticle(t *testing.T) {
	w, _ := newTestWiki(t, &spySyncer{})

	assert.Error(t, w.AddBookmark("ghost"))
	_, err := w.SaveArticle("cats", "Cats", "meow")
	assert.NoError(t, err)
	assert.NoError(t, w.AddBookmark("cats"))

	keys, err := w.GetBookmarks()
	assert.NoError(t, err)
	assert.Equal(t, []string{"cats"}, keys)
}

func TestSectionOrderAndBento_Roundtrip(t *testing.T) {
	w, _ := newTestWiki(t, &spySyncer{})

	order, err := w.GetSectionOrder()
	assert.NoError(t, err)
	assert.Nil(t, order)

	assert.NoError(t, w.SetSectionOrder([]string{"wiki", "archive", "habits"}))
	order, err = w.GetSectionOrder()
	assert.NoError(t, err)
	assert.Equal(t, []string{"wiki", "archive", "habits"}, order)

	assert.NoError(t, w.SetBentoSize("archive", "2x2"))
	sizes, err := w.GetBentoSizes()
	assert.NoError(t, err)
	assert.Equal(t, "2x2", sizes["archive"])
}

func TestDrafts_EmptyKeyIsNewPage(t *testing.T) {
	w, _ := newTestWiki(t, &spySyncer{})

	d, err := w.GetDraft("")
	assert.NoError(t, err)
	assert.Nil(t, d)

	assert.NoError(t, w.SaveDraft("", "New page", "wip"))
	d, err = w.GetDraft("")
	assert.NoError(t, err)
	assert.NotNil(t, d)
	assert.Equal(t, "wip", d.Content)

	assert.NoError(t, w.DiscardDraft(""))
	d, err = w.GetDraft("")
	assert.NoError(t, err)
	assert.Nil(t, d)
}

func TestRemoteStorageSummary_Disconnected(t *testing.T) {
	w, _ := newTestWiki(t, &spySyncer{})
	_, err := w.SaveArticle("cats", "Cats", "meow")
	assert.NoError(t, err)

	sum, err := w.GetRemoteStorageSummary(context.Background())
	assert.NoError(t, err)
	assert.False(t, sum.Connected)
	assert.NotEmpty(t, sum.Collections)
	for _, cs := range sum.Collections {
		if cs.Collection == "garden.wikikeeper.article" {
			assert.Equal(t, 1, cs.Local)
			assert.Equal(t, 0, cs.Synced)
		}
	}
}
