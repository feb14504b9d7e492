package commands

import (
	"context"
	"fmt"
	"time"

	"WikiKeeper/internal/config"
)

type getCmd struct{}

func (getCmd) Name() string        { return "get" }
func (getCmd) Description() string { return "Показать статью" }
func (getCmd) Usage() string       { return "get <key>" }

func (getCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	a, err := app.Wiki.GetArticle(args[0])
	if err != nil {
		return err
	}
	meta, err := app.Wiki.GetArticleMeta(args[0])
	if err != nil {
		return err
	}
	visibility := "public"
	if !meta.IsPublic {
		visibility = "private"
	}
	fmt.Fprintf(Out, "# %s\n", a.Title)
	fmt.Fprintf(Out, "key: %s  %s  updated: %s\n\n", a.Key, visibility,
		time.UnixMilli(a.UpdatedAt).Format(time.RFC3339))
	fmt.Fprintln(Out, a.Content)
	return nil
}

func init() { RegisterCmd(getCmd{}) }
