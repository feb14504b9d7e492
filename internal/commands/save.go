package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"WikiKeeper/internal/config"
)

type saveCmd struct{}

func (saveCmd) Name() string { return "save" }
func (saveCmd) Description() string {
	return "Сохранить статью (контент — аргументом или из stdin)"
}
func (saveCmd) Usage() string { return "save <key> <title> [content]" }

func (saveCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	key, title := args[0], args[1]
	var content string
	if len(args) >= 3 {
		content = strings.Join(args[2:], " ")
	} else {
		// без третьего аргумента контент читается из stdin целиком
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		content = string(b)
	}

	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	a, err := app.Wiki.SaveArticle(key, title, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved %q (updated %s)\n", a.Key, time.UnixMilli(a.UpdatedAt).Format(time.RFC3339))
	// даём фоновому push шанс уйти до закрытия процесса
	app.Engine.Flush(ctx)
	return nil
}

func init() { RegisterCmd(saveCmd{}) }
