package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"WikiKeeper/internal/config"
	"WikiKeeper/internal/model"
)

type feedCmd struct{}

func (feedCmd) Name() string { return "feed" }
func (feedCmd) Description() string {
	return "Лента подключённого аккаунта; --save N кладёт медиа поста в архив"
}
func (feedCmd) Usage() string { return "feed [--limit N] [--save N]" }

func (feedCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("limit", 20, "сколько постов показать")
	save := fs.Int("save", -1, "номер поста, чьи изображения сохранить в архив")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	posts, err := app.Wiki.GetFeed(ctx, *limit)
	if err != nil {
		return err
	}
	if *save >= 0 {
		if *save >= len(posts) {
			return fmt.Errorf("post %d: not in the last %d", *save, len(posts))
		}
		p := posts[*save]
		if len(p.ImageURLs) == 0 {
			fmt.Fprintln(Out, "Post has no images")
			return nil
		}
		for _, u := range p.ImageURLs {
			item := model.ArchiveItem{
				Type:       model.ArchiveTypeImage,
				URL:        u,
				Name:       p.Text,
				Source:     p.URI,
				AuthorName: p.AuthorHandle,
				AuthorDID:  p.AuthorDID,
			}
			saved, err := app.Wiki.SaveArchiveItem(item)
			if err != nil {
				return err
			}
			fmt.Fprintf(Out, "Archived %s (%s)\n", saved.ID, u)
		}
		app.Engine.Flush(ctx)
		return nil
	}
	for i, p := range posts {
		fmt.Fprintf(Out, "%3d  @%s  %s\n", i, p.AuthorHandle, p.CreatedAt)
		if p.Text != "" {
			fmt.Fprintf(Out, "     %s\n", p.Text)
		}
		for _, u := range p.ImageURLs {
			fmt.Fprintf(Out, "     img: %s\n", u)
		}
	}
	return nil
}

func init() { RegisterCmd(feedCmd{}) }
