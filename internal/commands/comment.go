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

type commentCmd struct{}

func (commentCmd) Name() string { return "comment" }
func (commentCmd) Description() string {
	return "Комментарии к статье (дерево ответов)"
}
func (commentCmd) Usage() string {
	return "comment list <key> | add <key> <text> [--author --parent <id>] | rm <key> <id>"
}

func (commentCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	switch args[0] {
	case "list":
		tree, err := app.Wiki.GetComments(args[1])
		if err != nil {
			return err
		}
		if len(tree) == 0 {
			fmt.Fprintln(Out, "No comments")
			return nil
		}
		printCommentTree(tree, 0)
		return nil

	case "add":
		fs := flag.NewFlagSet("comment add", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		author := fs.String("author", "", "имя автора")
		parent := fs.String("parent", "", "id родительского комментария")
		if len(args) < 3 {
			return ErrUsage
		}
		key, text := args[1], args[2]
		if err := fs.Parse(args[3:]); err != nil {
			return ErrUsage
		}
		c, err := app.Wiki.AddComment(key, text, *author, *parent)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Comment %s by %s\n", c.ID, c.Author)
		app.Engine.Flush(ctx)
		return nil

	case "rm":
		if len(args) != 3 {
			return ErrUsage
		}
		if err := app.Wiki.DeleteComment(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Deleted comment %s\n", args[2])
		return nil
	}
	return ErrUsage
}

func printCommentTree(nodes []*model.CommentNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		fmt.Fprintf(Out, "%s%s  %s  %s\n", indent, n.ID,
			time.UnixMilli(n.Timestamp).Format("2006-01-02 15:04"), n.Author)
		fmt.Fprintf(Out, "%s  %s\n", indent, n.Text)
		printCommentTree(n.Replies, depth+1)
	}
}

func init() { RegisterCmd(commentCmd{}) }
