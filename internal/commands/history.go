package commands

import (
	"context"
	"fmt"
	"time"

	"WikiKeeper/internal/config"
)

type historyCmd struct{}

func (historyCmd) Name() string { return "history" }
func (historyCmd) Description() string {
	return "История статьи; позиция 0 — живая версия"
}
func (historyCmd) Usage() string { return "history <key>" }

func (historyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	entries, err := app.Wiki.GetArticleHistory(args[0])
	if err != nil {
		return err
	}
	for i, e := range entries {
		label := ""
		if i == 0 {
			label = " (live)"
		}
		fmt.Fprintf(Out, "%3d  %d  %s  %s%s\n", i, e.Timestamp,
			time.UnixMilli(e.Timestamp).Format(time.RFC3339), e.Title, label)
	}
	return nil
}

func init() { RegisterCmd(historyCmd{}) }
