package commands

import (
	"context"
	"fmt"

	"WikiKeeper/internal/config"
)

type pinCmd struct{}

func (pinCmd) Name() string { return "pin" }
func (pinCmd) Description() string {
	return "Закреплённые статьи (в порядке закрепления)"
}
func (pinCmd) Usage() string { return "pin list | add <key> | rm <key>" }

func (pinCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	switch args[0] {
	case "list":
		pins, err := app.Wiki.GetPins()
		if err != nil {
			return err
		}
		for _, p := range pins {
			fmt.Fprintln(Out, p.Key)
		}
		return nil

	case "add":
		if len(args) != 2 {
			return ErrUsage
		}
		if err := app.Wiki.PinArticle(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Pinned %q\n", args[1])
		app.Engine.Flush(ctx)
		return nil

	case "rm":
		if len(args) != 2 {
			return ErrUsage
		}
		if err := app.Wiki.UnpinArticle(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Unpinned %q\n", args[1])
		return nil
	}
	return ErrUsage
}

func init() { RegisterCmd(pinCmd{}) }
