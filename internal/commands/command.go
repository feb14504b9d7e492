package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"WikiKeeper/internal/bootstrap"
	"WikiKeeper/internal/config"
)

// ErrUsage возвращается командой при неверных аргументах: диспетчер печатает
// её Usage и завершает процесс с кодом 2.
var ErrUsage = errors.New("usage")

// Command — подкоманда CLI. Регистрируется из init() своего файла.
type Command interface {
	// Name — имя команды, как её набирает пользователь, напр. "save".
	Name() string
	// Description — короткое описание для сводной справки.
	Description() string
	// Usage — точная строка использования, напр. "save <key> <title> [content]".
	Usage() string
	// Run исполняет команду; args — без имени команды.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

var registry = map[string]Command{}

// RegisterCmd добавляет команду в реестр.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get возвращает команду по имени.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List возвращает все команды, отсортированные по имени.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage собирает сводную справку по всем командам.
func FormatGlobalUsage() string {
	var b strings.Builder
	b.WriteString("WikiKeeper CLI\n\n")
	b.WriteString("Usage:\n  wikid [--data-dir <dir>] <command> [args]\n\n")
	b.WriteString("Commands:\n")
	for _, c := range List() {
		fmt.Fprintf(&b, "  %-34s %s\n", c.Usage(), c.Description())
	}
	return b.String()
}

// openApp собирает логгер и граф приложения для одной команды.
func openApp(cfg *config.Config) (*bootstrap.App, func() error, error) {
	logCfg := zap.NewDevelopmentConfig()
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		logCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	app, cleanup, err := bootstrap.OpenWiki(cfg, logger.Sugar())
	if err != nil {
		return nil, nil, err
	}
	done := func() error {
		_ = logger.Sync()
		return cleanup()
	}
	return app, done, nil
}
