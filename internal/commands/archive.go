package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"WikiKeeper/internal/config"
	"WikiKeeper/internal/model"
)

type archiveCmd struct{}

func (archiveCmd) Name() string { return "archive" }
func (archiveCmd) Description() string {
	return "Медиа-архив: список, добавление, правка, удаление"
}
func (archiveCmd) Usage() string {
	return "archive list | add <image|video> <url> [--name --note --tags a,b] | set <id> [--name --note --tags] | rm <id>"
}

func (archiveCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
		items, err := app.Wiki.GetArchive()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(Out, "Archive is empty")
			return nil
		}
		for _, it := range items {
			loc := it.URL
			if loc == "" {
				loc = fmt.Sprintf("<blob %d bytes>", len(it.Blob))
			}
			fmt.Fprintf(Out, "%s  %-5s  %-30s %s\n", it.ID, it.Type, it.Name, loc)
			if len(it.AlbumIDs) > 0 {
				fmt.Fprintf(Out, "      albums: %s\n", strings.Join(it.AlbumIDs, ", "))
			}
		}
		return nil

	case "add":
		fs := flag.NewFlagSet("archive add", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		name := fs.String("name", "", "имя элемента")
		note := fs.String("note", "", "заметка")
		tags := fs.String("tags", "", "теги через запятую")
		if len(args) < 3 {
			return ErrUsage
		}
		typ, url := args[1], args[2]
		if err := fs.Parse(args[3:]); err != nil {
			return ErrUsage
		}
		item := model.ArchiveItem{Type: typ, URL: url, Name: *name, UserNote: *note}
		if *tags != "" {
			item.Tags = strings.Split(*tags, ",")
		}
		saved, err := app.Wiki.SaveArchiveItem(item)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Added %s (%s)\n", saved.ID, saved.Type)
		app.Engine.Flush(ctx)
		return nil

	case "set":
		fs := flag.NewFlagSet("archive set", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		name := fs.String("name", "", "имя элемента")
		note := fs.String("note", "", "заметка")
		tags := fs.String("tags", "", "теги через запятую")
		albums := fs.String("albums", "", "id альбомов через запятую")
		if len(args) < 2 {
			return ErrUsage
		}
		id := args[1]
		if err := fs.Parse(args[2:]); err != nil {
			return ErrUsage
		}
		var patch model.ArchiveItemPatch
		set := false
		fs.Visit(func(f *flag.Flag) {
			set = true
			switch f.Name {
			case "name":
				patch.Name = name
			case "note":
				patch.UserNote = note
			case "tags":
				list := strings.Split(*tags, ",")
				patch.Tags = &list
			case "albums":
				list := strings.Split(*albums, ",")
				if *albums == "" {
					list = nil
				}
				patch.AlbumIDs = &list
			}
		})
		if !set {
			return ErrUsage
		}
		it, err := app.Wiki.UpdateArchiveItem(id, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Updated %s (updated %s)\n", it.ID,
			time.UnixMilli(it.UpdatedAt).Format(time.RFC3339))
		app.Engine.Flush(ctx)
		return nil

	case "rm":
		if len(args) != 2 {
			return ErrUsage
		}
		if err := app.Wiki.DeleteArchiveItem(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Deleted %s\n", args[1])
		return nil
	}
	return ErrUsage
}

func init() { RegisterCmd(archiveCmd{}) }
