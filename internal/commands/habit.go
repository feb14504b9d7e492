package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"WikiKeeper/internal/config"
)

type habitCmd struct{}

func (habitCmd) Name() string { return "habit" }
func (habitCmd) Description() string {
	return "Трекер привычек: список, лог, отметка дня"
}
func (habitCmd) Usage() string {
	return "habit list | add <name> | rm <name> | toggle <YYYY-MM-DD> <name> | log"
}

func (habitCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
		habits, err := app.Wiki.GetHabits()
		if err != nil {
			return err
		}
		if len(habits) == 0 {
			fmt.Fprintln(Out, "No habits")
			return nil
		}
		for _, h := range habits {
			fmt.Fprintln(Out, h.Name)
		}
		return nil

	case "add":
		if len(args) != 2 {
			return ErrUsage
		}
		if err := app.Wiki.AddHabit(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Added habit %q\n", args[1])
		app.Engine.Flush(ctx)
		return nil

	case "rm":
		if len(args) != 2 {
			return ErrUsage
		}
		if err := app.Wiki.RemoveHabit(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Removed habit %q\n", args[1])
		app.Engine.Flush(ctx)
		return nil

	case "toggle":
		if len(args) != 3 {
			return ErrUsage
		}
		if err := app.Wiki.ToggleHabit(args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Toggled %q on %s\n", args[2], args[1])
		app.Engine.Flush(ctx)
		return nil

	case "log":
		log, err := app.Wiki.GetHabitLog()
		if err != nil {
			return err
		}
		dates := make([]string, 0, len(log))
		for d := range log {
			dates = append(dates, d)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(dates)))
		for _, d := range dates {
			fmt.Fprintf(Out, "%s  %s\n", d, strings.Join(log[d], ", "))
		}
		return nil
	}
	return ErrUsage
}

func init() { RegisterCmd(habitCmd{}) }
