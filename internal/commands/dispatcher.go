package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"WikiKeeper/internal/config"
)

// Коды завершения процесса: 0 — успех, 1 — ошибка команды, 2 — неверное
// использование (как у flag.Parse).
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Dispatch разбирает args, находит команду в реестре и исполняет её.
// Возвращает код завершения процесса; весь вывод уходит в Out.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	// глобальный --help перекрывает всё, в каком бы месте он ни стоял
	for _, a := range os.Args[1:] {
		if a == "--help" || a == "-h" {
			fmt.Fprint(Out, FormatGlobalUsage())
			return exitOK
		}
	}
	if !flag.Parsed() {
		flag.Parse()
	}

	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitUsage
	}

	name := strings.ToLower(args[0])
	if name == "help" {
		return runHelp(args[1:])
	}

	c, ok := Get(name)
	if !ok {
		return unknownCommand(name)
	}

	err := c.Run(ctx, cfg, args[1:])
	if err == nil {
		return exitOK
	}
	if errors.Is(err, ErrUsage) {
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return exitUsage
	}
	fmt.Fprintf(Out, "%s error: %v\n", name, err)
	return exitError
}

// runHelp обрабатывает `wikid help [command]`.
func runHelp(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return exitOK
	}
	c, ok := Get(args[0])
	if !ok {
		return unknownCommand(args[0])
	}
	fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
	return exitOK
}

func unknownCommand(name string) int {
	fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
	fmt.Fprint(Out, FormatGlobalUsage())
	return exitUsage
}
