package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"WikiKeeper/internal/config"
)

type exportCmd struct{}

func (exportCmd) Name() string { return "export" }
func (exportCmd) Description() string {
	return "Экспортировать все статьи в JSON (stdout или файл)"
}
func (exportCmd) Usage() string { return "export [file]" }

func (exportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	doc, err := app.Wiki.ExportArticles()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := os.WriteFile(args[0], b, 0o600); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Exported %d articles to %s\n", len(doc), args[0])
		return nil
	}
	fmt.Fprintln(Out, string(b))
	return nil
}

func init() { RegisterCmd(exportCmd{}) }
