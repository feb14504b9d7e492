package commands

import (
	"context"
	"fmt"

	"WikiKeeper/internal/config"
)

type callbackCmd struct{}

func (callbackCmd) Name() string { return "callback" }
func (callbackCmd) Description() string {
	return "Завершить подключение вручную (если loopback не дождался)"
}
func (callbackCmd) Usage() string { return "callback <code> <state>" }

func (callbackCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	sess, err := app.Wiki.CompleteRemoteOAuth(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "✓ Подключено как %s (%s)\n", sess.Handle, sess.DID)
	return nil
}

func init() { RegisterCmd(callbackCmd{}) }
