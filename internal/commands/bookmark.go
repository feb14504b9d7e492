package commands

import (
	"context"
	"fmt"

	"WikiKeeper/internal/config"
)

type bookmarkCmd struct{}

func (bookmarkCmd) Name() string        { return "bookmark" }
func (bookmarkCmd) Description() string { return "Закладки на статьи" }
func (bookmarkCmd) Usage() string       { return "bookmark list | add <key> | rm <key>" }

func (bookmarkCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
		keys, err := app.Wiki.GetBookmarks()
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(Out, k)
		}
		return nil

	case "add":
		if len(args) != 2 {
			return ErrUsage
		}
		if err := app.Wiki.AddBookmark(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Bookmarked %q\n", args[1])
		app.Engine.Flush(ctx)
		return nil

	case "rm":
		if len(args) != 2 {
			return ErrUsage
		}
		if err := app.Wiki.RemoveBookmark(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Removed bookmark %q\n", args[1])
		return nil
	}
	return ErrUsage
}

func init() { RegisterCmd(bookmarkCmd{}) }
