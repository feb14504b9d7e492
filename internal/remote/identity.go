package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Identity — результат резолва handle: стабильный DID аккаунта и endpoint
// его персонального сервера данных.
type Identity struct {
	DID         string
	Handle      string
	PDSEndpoint string
}

// IdentityResolver резолвит handle через appview и справочник DID.
type IdentityResolver struct {
	HTTP         *http.Client
	AppViewURL   string
	DirectoryURL string
}

type resolveHandleResponse struct {
	DID string `json:"did"`
}

type didDocument struct {
	Service []struct {
		ID              string `json:"id"`
		Type            string `json:"type"`
		ServiceEndpoint string `json:"serviceEndpoint"`
	} `json:"service"`
}

// Resolve превращает handle в (DID, PDS endpoint). Ошибка любой из двух
// ступеней означает, что подключение не начинается вовсе.
func (r *IdentityResolver) Resolve(ctx context.Context, handle string) (*Identity, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, fmt.Errorf("empty handle")
	}

	u := r.AppViewURL + "/xrpc/com.atproto.identity.resolveHandle?handle=" + url.QueryEscape(handle)
	var rh resolveHandleResponse
	if err := r.getJSON(ctx, u, &rh); err != nil {
		return nil, fmt.Errorf("resolve handle %q: %w", handle, err)
	}
	if rh.DID == "" {
		return nil, fmt.Errorf("resolve handle %q: empty did in response", handle)
	}

	var doc didDocument
	if err := r.getJSON(ctx, r.DirectoryURL+"/"+rh.DID, &doc); err != nil {
		return nil, fmt.Errorf("fetch did document %s: %w", rh.DID, err)
	}
	for _, svc := range doc.Service {
		if svc.Type == "AtprotoPersonalDataServer" || strings.HasSuffix(svc.ID, "#atproto_pds") {
			return &Identity{DID: rh.DID, Handle: handle, PDSEndpoint: strings.TrimSuffix(svc.ServiceEndpoint, "/")}, nil
		}
	}
	return nil, fmt.Errorf("did document %s: no pds service entry", rh.DID)
}

func (r *IdentityResolver) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
