package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// CallbackResult — параметры, с которыми авторизационный сервер вернул
// пользователя на loopback-адрес.
type CallbackResult struct {
	Code  string
	State string
	Err   error
}

// ListenCallback поднимает одноразовый loopback-слушатель редиректа.
// Первый запрос на /callback кладёт результат в канал, после чего сервер
// можно гасить через shutdown.
func ListenCallback(port int) (<-chan CallbackResult, func(), error) {
	resCh := make(chan CallbackResult, 1)

	r := chi.NewRouter()
	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		res := CallbackResult{Code: q.Get("code"), State: q.Get("state")}
		if e := q.Get("error"); e != "" {
			res.Err = fmt.Errorf("authorization server returned %q: %s", e, q.Get("error_description"))
		}
		select {
		case resCh <- res:
		default:
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("WikiKeeper: авторизация получена, это окно можно закрыть.\n"))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case resCh <- CallbackResult{Err: err}:
			default:
			}
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return resCh, shutdown, nil
}

// CallbackURI возвращает redirect_uri для настроенного порта.
func CallbackURI(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", port)
}
