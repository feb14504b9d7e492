package commands

import (
	"context"
	"fmt"
	"time"

	"WikiKeeper/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string { return "status" }
func (statusCmd) Description() string {
	return "Сессия, состояние синхронизации по коллекциям и журнал"
}
func (statusCmd) Usage() string { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, done, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer done()

	sum, err := app.Wiki.GetRemoteStorageSummary(ctx)
	if err != nil {
		return err
	}
	if sum.Connected {
		fmt.Fprintf(Out, "Connected: %s (%s)\n", sum.Handle, sum.DID)
		fmt.Fprintf(Out, "PDS:       %s\n", sum.PDSEndpoint)
	} else {
		fmt.Fprintln(Out, "Not connected")
	}
	fmt.Fprintf(Out, "Auth:      %s\n\n", sum.AuthState)

	fmt.Fprintln(Out, "Collections (local / synced):")
	for _, cs := range sum.Collections {
		line := fmt.Sprintf("  %-34s %4d / %-4d %s", cs.Collection, cs.Local, cs.Synced, cs.State)
		if cs.Error != "" {
			line += " (" + cs.Error + ")"
		}
		fmt.Fprintln(Out, line)
	}

	activity, err := app.Wiki.Activity(10)
	if err != nil {
		return err
	}
	if len(activity) > 0 {
		fmt.Fprintln(Out, "\nRecent activity:")
		for _, e := range activity {
			fmt.Fprintf(Out, "  %s  %-5s %s\n",
				time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04"), e.Level, e.Message)
		}
	}
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
