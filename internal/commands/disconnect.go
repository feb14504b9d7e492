package commands

import (
	"context"
	"fmt"

	"WikiKeeper/internal/config"
)

type disconnectCmd struct{}

func (disconnectCmd) Name() string { return "disconnect" }
func (disconnectCmd) Description() string {
	return "Забыть удалённую сессию (локальные данные остаются)"
}
func (disconnectCmd) Usage() string { return "disconnect" }

func (disconnectCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	if err := app.Wiki.DisconnectRemote(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Disconnected")
	return nil
}

func init() { RegisterCmd(disconnectCmd{}) }
