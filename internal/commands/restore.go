package commands

import (
	"context"
	"fmt"
	"strconv"

	"WikiKeeper/internal/config"
)

type restoreCmd struct{}

func (restoreCmd) Name() string { return "restore" }
func (restoreCmd) Description() string {
	return "Откатить статью к снимку истории (timestamp из history)"
}
func (restoreCmd) Usage() string { return "restore <key> <timestamp>" }

func (restoreCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	ts, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	a, err := app.Wiki.RestoreArticle(args[0], ts)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Restored %q to %q\n", a.Key, a.Title)
	app.Engine.Flush(ctx)
	return nil
}

func init() { RegisterCmd(restoreCmd{}) }
