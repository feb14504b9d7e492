package commands

import (
	"context"
	"fmt"

	"WikiKeeper/internal/config"
)

type rmCmd struct{}

func (rmCmd) Name() string { return "rm" }
func (rmCmd) Description() string {
	return "Удалить статью (удаление на PDS обязано пройти первым)"
}
func (rmCmd) Usage() string { return "rm <key>" }

func (rmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	if err := app.Wiki.DeleteArticle(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted %q\n", args[0])
	return nil
}

func init() { RegisterCmd(rmCmd{}) }
