package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"WikiKeeper/internal/config"
)

type draftCmd struct{}

func (draftCmd) Name() string { return "draft" }
func (draftCmd) Description() string {
	return "Черновики автосохранения (ключ \"\" — новая страница)"
}
func (draftCmd) Usage() string {
	return "draft get [key] | save <key> <title> <content> | rm [key]"
}

func (draftCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	switch args[0] {
	case "get":
		key := ""
		if len(args) == 2 {
			key = args[1]
		}
		d, err := app.Wiki.GetDraft(key)
		if err != nil {
			return err
		}
		if d == nil {
			fmt.Fprintln(Out, "No draft")
			return nil
		}
		fmt.Fprintf(Out, "# %s (draft, %s)\n\n%s\n", d.Title,
			time.UnixMilli(d.UpdatedAt).Format(time.RFC3339), d.Content)
		return nil

	case "save":
		if len(args) < 4 {
			return ErrUsage
		}
		if err := app.Wiki.SaveDraft(args[1], args[2], strings.Join(args[3:], " ")); err != nil {
			return err
		}
		fmt.Fprintln(Out, "Draft saved")
		return nil

	case "rm":
		key := ""
		if len(args) == 2 {
			key = args[1]
		}
		if err := app.Wiki.DiscardDraft(key); err != nil {
			return err
		}
		fmt.Fprintln(Out, "Draft discarded")
		return nil
	}
	return ErrUsage
}

func init() { RegisterCmd(draftCmd{}) }
