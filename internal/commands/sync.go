package commands

import (
	"context"
	"fmt"

	"WikiKeeper/internal/config"
	"WikiKeeper/internal/model"
)

type syncCmd struct{}

func (syncCmd) Name() string { return "sync" }
func (syncCmd) Description() string {
	return "Полная двусторонняя сверка с PDS"
}
func (syncCmd) Usage() string { return "sync" }

func (syncCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintln(Out, "→ Запуск полной сверки…")
	if err := app.Wiki.SyncNow(ctx); err != nil {
		return err
	}
	for _, collection := range model.SyncedCollections {
		state, reason := app.Engine.Status(collection)
		line := fmt.Sprintf("  %-34s %s", collection, state)
		if reason != "" {
			line += " (" + reason + ")"
		}
		fmt.Fprintln(Out, line)
	}
	return nil
}

func init() { RegisterCmd(syncCmd{}) }
