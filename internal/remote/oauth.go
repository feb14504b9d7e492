package remote

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"WikiKeeper/internal/model"
	"WikiKeeper/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthState — состояние машины OAuth-авторизации.
type AuthState int

const (
	StateIdle AuthState = iota
	StateResolvingIdentity
	StateAuthorizationRequested
	StateAwaitingCallback
	StateExchangingToken
	StateAuthenticated
	StateRefreshingToken
	StateDisconnected
)

func (s AuthState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingIdentity:
		return "resolving_identity"
	case StateAuthorizationRequested:
		return "authorization_requested"
	case StateAwaitingCallback:
		return "awaiting_callback"
	case StateExchangingToken:
		return "exchanging_token"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshingToken:
		return "refreshing_token"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Redirector — внедряемая способность «увести пользователя на authorize URL».
// В приложении это открытие браузера, в тестах — прямой вызов сервера.
type Redirector interface {
	Redirect(authorizeURL string) error
}

// RedirectFunc адаптирует функцию к интерфейсу Redirector.
type RedirectFunc func(authorizeURL string) error

func (f RedirectFunc) Redirect(u string) error { return f(u) }

// OAuthManager ведёт authorization-code-with-PKCE поток и жизненный цикл
// сессии. Полуинициализированная сессия никогда не сохраняется: любая сетевая
// ошибка откатывает машину в Idle/Disconnected.
type OAuthManager struct {
	http        *http.Client
	store       repo.SessionRepository
	resolver    *IdentityResolver
	clientID    string
	redirectURI string
	log         *zap.SugaredLogger

	mu    sync.Mutex
	state AuthState
}

// NewOAuthManager создаёт менеджер. Начальное состояние восстанавливается
// из хранилища: живая сессия → Authenticated, незавершённый поток →
// AwaitingCallback (обмен кода можно продолжить после рестарта процесса).
func NewOAuthManager(httpClient *http.Client, store repo.SessionRepository, resolver *IdentityResolver, clientID, redirectURI string, log *zap.SugaredLogger) *OAuthManager {
	m := &OAuthManager{
		http:        httpClient,
		store:       store,
		resolver:    resolver,
		clientID:    clientID,
		redirectURI: redirectURI,
		log:         log,
		state:       StateIdle,
	}
	if _, err := store.GetSession(); err == nil {
		m.state = StateAuthenticated
	} else if _, err := store.GetPendingAuth(); err == nil {
		m.state = StateAwaitingCallback
	}
	return m
}

// State возвращает текущее состояние машины.
func (m *OAuthManager) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *OAuthManager) setState(s AuthState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

type authServerMeta struct {
	Issuer        string `json:"issuer"`
	AuthzEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint string `json:"token_endpoint"`
	PAREndpoint   string `json:"pushed_authorization_request_endpoint"`
}

type protectedResourceMeta struct {
	AuthorizationServers []string `json:"authorization_servers"`
}

// Start начинает подключение: резолв identity, PAR и уход на редирект.
// До завершения callback сессия не создаётся.
func (m *OAuthManager) Start(ctx context.Context, handle string, redirect Redirector) error {
	m.setState(StateResolvingIdentity)

	id, err := m.resolver.Resolve(ctx, handle)
	if err != nil {
		m.setState(StateIdle)
		return &model.RemoteAuthError{Stage: "resolving_identity", Err: err}
	}

	meta, err := m.discoverAuthServer(ctx, id.PDSEndpoint)
	if err != nil {
		m.setState(StateIdle)
		return &model.RemoteAuthError{Stage: "resolving_identity", Err: err}
	}

	verifier := newCodeVerifier()
	challenge := codeChallengeS256(verifier)
	stateParam := uuid.NewString()

	m.setState(StateAuthorizationRequested)
	form := url.Values{
		"client_id":             {m.clientID},
		"response_type":         {"code"},
		"redirect_uri":          {m.redirectURI},
		"scope":                 {"atproto transition:generic"},
		"state":                 {stateParam},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
		"login_hint":            {id.Handle},
	}
	var par struct {
		RequestURI string `json:"request_uri"`
	}
	if err := m.postForm(ctx, meta.PAREndpoint, form, &par); err != nil {
		m.setState(StateIdle)
		return &model.RemoteAuthError{Stage: "authorization_request", Err: err}
	}

	pending := model.PendingAuth{
		Handle:        id.Handle,
		DID:           id.DID,
		PDSEndpoint:   id.PDSEndpoint,
		AuthServer:    meta.Issuer,
		TokenEndpoint: meta.TokenEndpoint,
		Verifier:      verifier,
		State:         stateParam,
		RedirectURI:   m.redirectURI,
		CreatedAt:     time.Now().UnixMilli(),
	}
	if err := m.store.PutPendingAuth(pending); err != nil {
		m.setState(StateIdle)
		return &model.RemoteAuthError{Stage: "authorization_request", Err: err}
	}

	authorizeURL := meta.AuthzEndpoint + "?" + url.Values{
		"client_id":   {m.clientID},
		"request_uri": {par.RequestURI},
	}.Encode()

	m.setState(StateAwaitingCallback)
	m.log.Infow("oauth redirect", "handle", id.Handle, "did", id.DID)
	return redirect.Redirect(authorizeURL)
}

// HandleCallback завершает поток: обменивает код на токены и сохраняет сессию.
// Вызывается, когда внешний редирект вернул управление, в том числе из нового
// процесса.
func (m *OAuthManager) HandleCallback(ctx context.Context, code, stateParam string) (*model.RemoteSession, error) {
	pending, err := m.store.GetPendingAuth()
	if err != nil {
		m.setState(StateIdle)
		return nil, &model.RemoteAuthError{Stage: "token_exchange", Err: fmt.Errorf("no pending authorization: %w", err)}
	}
	if pending.State != stateParam {
		m.setState(StateIdle)
		_ = m.store.ClearPendingAuth()
		return nil, &model.RemoteAuthError{Stage: "token_exchange", Err: errors.New("state mismatch")}
	}

	m.setState(StateExchangingToken)
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {pending.RedirectURI},
		"client_id":     {m.clientID},
		"code_verifier": {pending.Verifier},
	}
	var tok tokenResponse
	if err := m.postForm(ctx, pending.TokenEndpoint, form, &tok); err != nil {
		m.setState(StateIdle)
		_ = m.store.ClearPendingAuth()
		return nil, &model.RemoteAuthError{Stage: "token_exchange", Err: err}
	}

	sess := model.RemoteSession{
		DID:           pending.DID,
		Handle:        pending.Handle,
		AccessToken:   tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		TokenExpiry:   tok.expiryMillis(),
		PDSEndpoint:   pending.PDSEndpoint,
		AuthServer:    pending.AuthServer,
		TokenEndpoint: pending.TokenEndpoint,
	}
	if err := m.store.PutSession(sess); err != nil {
		m.setState(StateIdle)
		_ = m.store.ClearPendingAuth()
		return nil, &model.RemoteAuthError{Stage: "token_exchange", Err: err}
	}
	_ = m.store.ClearPendingAuth()
	m.setState(StateAuthenticated)
	m.log.Infow("oauth connected", "handle", sess.Handle, "did", sess.DID)
	return &sess, nil
}

// Refresh обновляет истёкший access-токен. Неуспех сбрасывает сессию:
// остаться с полумёртвыми учётными данными нельзя.
func (m *OAuthManager) Refresh(ctx context.Context) (*model.RemoteSession, error) {
	sess, err := m.store.GetSession()
	if err != nil {
		return nil, model.ErrNotConnected
	}

	m.setState(StateRefreshingToken)
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {sess.RefreshToken},
		"client_id":     {m.clientID},
	}
	var tok tokenResponse
	if err := m.postForm(ctx, sess.TokenEndpoint, form, &tok); err != nil {
		_ = m.store.ClearSession()
		m.setState(StateDisconnected)
		return nil, &model.RemoteAuthError{Stage: "token_refresh", Err: err}
	}

	sess.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		sess.RefreshToken = tok.RefreshToken
	}
	sess.TokenExpiry = tok.expiryMillis()
	if err := m.store.PutSession(*sess); err != nil {
		_ = m.store.ClearSession()
		m.setState(StateDisconnected)
		return nil, &model.RemoteAuthError{Stage: "token_refresh", Err: err}
	}
	m.setState(StateAuthenticated)
	return sess, nil
}

// Disconnect очищает сессию и незавершённый поток. Только по команде
// пользователя, автоматически сюда не приходим.
func (m *OAuthManager) Disconnect() error {
	if err := m.store.ClearSession(); err != nil {
		return err
	}
	if err := m.store.ClearPendingAuth(); err != nil {
		return err
	}
	m.setState(StateIdle)
	return nil
}

func (m *OAuthManager) discoverAuthServer(ctx context.Context, pdsEndpoint string) (*authServerMeta, error) {
	var pr protectedResourceMeta
	if err := getJSON(ctx, m.http, pdsEndpoint+"/.well-known/oauth-protected-resource", &pr); err != nil {
		return nil, fmt.Errorf("protected resource metadata: %w", err)
	}
	if len(pr.AuthorizationServers) == 0 {
		return nil, errors.New("pds metadata lists no authorization server")
	}
	issuer := strings.TrimSuffix(pr.AuthorizationServers[0], "/")
	var meta authServerMeta
	if err := getJSON(ctx, m.http, issuer+"/.well-known/oauth-authorization-server", &meta); err != nil {
		return nil, fmt.Errorf("authorization server metadata: %w", err)
	}
	if meta.Issuer == "" {
		meta.Issuer = issuer
	}
	if meta.PAREndpoint == "" || meta.TokenEndpoint == "" || meta.AuthzEndpoint == "" {
		return nil, errors.New("authorization server metadata is incomplete")
	}
	return &meta, nil
}

func (m *OAuthManager) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Sub          string `json:"sub"`
}

// expiryMillis вычисляет срок токена: expires_in из ответа, иначе exp-клейм
// самого JWT. Ноль означает «считать истёкшим немедленно».
func (t tokenResponse) expiryMillis() int64 {
	if t.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second).UnixMilli()
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(t.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.UnixMilli()
		}
	}
	return 0
}

func newCodeVerifier() string {
	b := make([]byte, 48)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func codeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
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
