package commands

import (
	"context"
	"fmt"
	"time"

	"WikiKeeper/internal/config"
	"WikiKeeper/internal/remote"
)

type connectCmd struct{}

func (connectCmd) Name() string { return "connect" }
func (connectCmd) Description() string {
	return "Подключить удалённый репозиторий (OAuth через браузер)"
}
func (connectCmd) Usage() string { return "connect <handle>" }

func (connectCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	resCh, shutdown, err := remote.ListenCallback(cfg.CallbackPort)
	if err != nil {
		return fmt.Errorf("start callback listener: %w", err)
	}
	defer shutdown()

	redirect := remote.RedirectFunc(func(authorizeURL string) error {
		fmt.Fprintln(Out, "Откройте в браузере и подтвердите доступ:")
		fmt.Fprintf(Out, "  %s\n", authorizeURL)
		return nil
	})
	if err := app.Wiki.StartRemoteOAuth(ctx, args[0], redirect); err != nil {
		return err
	}

	fmt.Fprintln(Out, "Жду редирект на loopback…")
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	select {
	case <-waitCtx.Done():
		fmt.Fprintln(Out, "Редирект не пришёл. Завершите вручную: wikid callback <code> <state>")
		return nil
	case res := <-resCh:
		if res.Err != nil {
			return res.Err
		}
		sess, err := app.Wiki.CompleteRemoteOAuth(ctx, res.Code, res.State)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "✓ Подключено как %s (%s)\n", sess.Handle, sess.DID)
		return nil
	}
}

func init() { RegisterCmd(connectCmd{}) }
