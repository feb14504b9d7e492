package commands

import (
	"context"
	"fmt"
	"time"

	"WikiKeeper/internal/config"
)

type listCmd struct{}

func (listCmd) Name() string { return "list" }
func (listCmd) Description() string {
	return "Список статей, свежие первыми"
}
func (listCmd) Usage() string { return "list" }

func (listCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	articles, err := app.Wiki.GetAllArticles()
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		fmt.Fprintln(Out, "No articles yet")
		return nil
	}
	pins, err := app.Wiki.GetPins()
	if err != nil {
		return err
	}
	pinned := make(map[string]bool, len(pins))
	for _, p := range pins {
		pinned[p.Key] = true
	}
	for _, a := range articles {
		mark := " "
		if pinned[a.Key] {
			mark = "*"
		}
		fmt.Fprintf(Out, "%s %-24s %-40s %s\n", mark, a.Key, a.Title,
			time.UnixMilli(a.UpdatedAt).Format("2006-01-02 15:04"))
	}
	return nil
}

func init() { RegisterCmd(listCmd{}) }
