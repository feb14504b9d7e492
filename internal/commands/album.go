package commands

import (
	"context"
	"fmt"
	"strings"

	"WikiKeeper/internal/config"
	"WikiKeeper/internal/model"
)

type albumCmd struct{}

func (albumCmd) Name() string { return "album" }
func (albumCmd) Description() string {
	return "Альбомы архива (удаление не трогает элементы)"
}
func (albumCmd) Usage() string {
	return "album list | add <name> | rename <id> <name> | rm <id>"
}

func (albumCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
		albums, err := app.Wiki.GetAlbums()
		if err != nil {
			return err
		}
		if len(albums) == 0 {
			fmt.Fprintln(Out, "No albums")
			return nil
		}
		for _, a := range albums {
			fmt.Fprintf(Out, "%s  %s\n", a.ID, a.Name)
		}
		return nil

	case "add":
		if len(args) < 2 {
			return ErrUsage
		}
		a, err := app.Wiki.SaveAlbum(model.Album{Name: strings.Join(args[1:], " ")})
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Created album %s (%s)\n", a.ID, a.Name)
		app.Engine.Flush(ctx)
		return nil

	case "rename":
		if len(args) < 3 {
			return ErrUsage
		}
		a, err := app.Wiki.SaveAlbum(model.Album{ID: args[1], Name: strings.Join(args[2:], " ")})
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Renamed album %s to %s\n", a.ID, a.Name)
		app.Engine.Flush(ctx)
		return nil

	case "rm":
		if len(args) != 2 {
			return ErrUsage
		}
		if err := app.Wiki.DeleteAlbum(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Deleted album %s\n", args[1])
		app.Engine.Flush(ctx)
		return nil
	}
	return ErrUsage
}

func init() { RegisterCmd(albumCmd{}) }
