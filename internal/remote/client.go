package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"WikiKeeper/internal/model"
	"WikiKeeper/internal/repo"
)

// expirySkew — запас, с которым токен считается истёкшим до фактического exp.
const expirySkew = 30 * time.Second

// Record — запись удалённого репозитория.
type Record struct {
	URI   string          `json:"uri"`
	CID   string          `json:"cid"`
	Value json.RawMessage `json:"value"`
}

// RKey выделяет record key из AT-URI (последний сегмент пути).
func (r Record) RKey() string {
	for i := len(r.URI) - 1; i >= 0; i-- {
		if r.URI[i] == '/' {
			return r.URI[i+1:]
		}
	}
	return r.URI
}

// Client — клиент репозитория записей одного аккаунта. Все операции требуют
// состояния Authenticated; без сессии возвращается model.ErrNotConnected и
// повторных попыток не делается.
type Client struct {
	http       *http.Client
	store      repo.SessionRepository
	oauth      *OAuthManager
	appViewURL string
}

// NewClient создаёт клиент поверх общего слота сессии.
func NewClient(httpClient *http.Client, store repo.SessionRepository, oauth *OAuthManager, appViewURL string) *Client {
	return &Client{http: httpClient, store: store, oauth: oauth, appViewURL: appViewURL}
}

// session возвращает живую сессию, при необходимости прозрачно обновив токен.
func (c *Client) session(ctx context.Context) (*model.RemoteSession, error) {
	sess, err := c.store.GetSession()
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotConnected
		}
		return nil, err
	}
	if sess.Expired(expirySkew) {
		sess, err = c.oauth.Refresh(ctx)
		if err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// CreateRecord создаёт запись в коллекции; rkey выбирает сервер.
func (c *Client) CreateRecord(ctx context.Context, collection string, value any) (*Record, error) {
	sess, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"repo":       sess.DID,
		"collection": collection,
		"record":     value,
	}
	var out Record
	err = c.postJSON(ctx, sess, sess.PDSEndpoint+"/xrpc/com.atproto.repo.createRecord", payload, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PutRecord создаёт или перезаписывает запись под явным rkey.
func (c *Client) PutRecord(ctx context.Context, collection, rkey string, value any) (*Record, error) {
	sess, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"repo":       sess.DID,
		"collection": collection,
		"rkey":       rkey,
		"record":     value,
	}
	var out Record
	err = c.postJSON(ctx, sess, sess.PDSEndpoint+"/xrpc/com.atproto.repo.putRecord", payload, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecord удаляет запись по rkey.
func (c *Client) DeleteRecord(ctx context.Context, collection, rkey string) error {
	sess, err := c.session(ctx)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"repo":       sess.DID,
		"collection": collection,
		"rkey":       rkey,
	}
	return c.postJSON(ctx, sess, sess.PDSEndpoint+"/xrpc/com.atproto.repo.deleteRecord", payload, nil)
}

// ListRecords перечисляет все записи коллекции, следуя курсору.
func (c *Client) ListRecords(ctx context.Context, collection string) ([]Record, error) {
	sess, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	var all []Record
	cursor := ""
	for {
		q := url.Values{
			"repo":       {sess.DID},
			"collection": {collection},
			"limit":      {"100"},
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var page struct {
			Records []Record `json:"records"`
			Cursor  string   `json:"cursor"`
		}
		u := sess.PDSEndpoint + "/xrpc/com.atproto.repo.listRecords?" + q.Encode()
		if err := c.getJSON(ctx, sess, u, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if page.Cursor == "" || len(page.Records) == 0 {
			return all, nil
		}
		cursor = page.Cursor
	}
}

// FeedPost — агрегированный медиа-пост из ленты автора.
type FeedPost struct {
	URI          string
	AuthorHandle string
	AuthorDID    string
	Text         string
	CreatedAt    string
	ImageURLs    []string
}

// GetAuthorFeed читает ленту автора через appview. Только чтение:
// в решения о консистентности лента не участвует.
func (c *Client) GetAuthorFeed(ctx context.Context, actor string, limit int) ([]FeedPost, error) {
	sess, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	if actor == "" {
		actor = sess.DID
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	q := url.Values{
		"actor": {actor},
		"limit": {fmt.Sprint(limit)},
	}
	var page struct {
		Feed []struct {
			Post struct {
				URI    string `json:"uri"`
				Author struct {
					DID    string `json:"did"`
					Handle string `json:"handle"`
				} `json:"author"`
				Record struct {
					Text      string `json:"text"`
					CreatedAt string `json:"createdAt"`
				} `json:"record"`
				Embed struct {
					Images []struct {
						Fullsize string `json:"fullsize"`
					} `json:"images"`
				} `json:"embed"`
			} `json:"post"`
		} `json:"feed"`
	}
	u := c.appViewURL + "/xrpc/app.bsky.feed.getAuthorFeed?" + q.Encode()
	if err := c.getJSON(ctx, sess, u, &page); err != nil {
		return nil, err
	}
	res := make([]FeedPost, 0, len(page.Feed))
	for _, f := range page.Feed {
		p := FeedPost{
			URI:          f.Post.URI,
			AuthorHandle: f.Post.Author.Handle,
			AuthorDID:    f.Post.Author.DID,
			Text:         f.Post.Record.Text,
			CreatedAt:    f.Post.Record.CreatedAt,
		}
		for _, img := range f.Post.Embed.Images {
			p.ImageURLs = append(p.ImageURLs, img.Fullsize)
		}
		res = append(res, p)
	}
	return res, nil
}

func (c *Client) postJSON(ctx context.Context, sess *model.RemoteSession, url string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, sess *model.RemoteSession, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		var xe struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &xe) == nil && xe.Error != "" {
			return fmt.Errorf("xrpc %s: %s", xe.Error, xe.Message)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
