package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"WikiKeeper/internal/config"
	"WikiKeeper/internal/model"
)

type importCmd struct{}

func (importCmd) Name() string { return "import" }
func (importCmd) Description() string {
	return "Импортировать документ экспорта (новее — побеждает)"
}
func (importCmd) Usage() string { return "import <file | ->" }

func (importCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	var b []byte
	var err error
	if args[0] == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}
	var doc model.ExportDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("decode export document: %w", err)
	}

	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	sum, err := app.Wiki.ImportArticles(doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Imported: %d created, %d updated, %d skipped\n",
		sum.Created, sum.Updated, sum.Skipped)
	app.Engine.Flush(ctx)
	return nil
}

func init() { RegisterCmd(importCmd{}) }
