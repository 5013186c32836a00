package desktop

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"apod/internal/logging"
	"apod/internal/services"
)

const (
	component = "desktop"

	// PathPlaceholder is replaced with the image path in command arguments.
	PathPlaceholder = "{path}"

	outputLimit = 512
)

// Setter applies an image file as the desktop background.
type Setter interface {
	SetBackground(ctx context.Context, path string) error
}

// CommandSetter runs an external command to set the background.
type CommandSetter struct {
	command []string
	logger  *slog.Logger
}

var _ Setter = (*CommandSetter)(nil)

// NewCommandSetter returns a setter for argv. It fails when argv is empty.
func NewCommandSetter(argv []string, logger *slog.Logger) (*CommandSetter, error) {
	command := make([]string, 0, len(argv))
	for _, arg := range argv {
		command = append(command, strings.TrimSpace(arg))
	}
	if len(command) == 0 || command[0] == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new setter", "background command is empty", nil)
	}
	return &CommandSetter{
		command: command,
		logger:  logging.NewComponentLogger(logger, component),
	}, nil
}

// Args returns the argv that would run for path.
func (s *CommandSetter) Args(path string) []string {
	args := make([]string, 0, len(s.command)+1)
	substituted := false
	for _, arg := range s.command {
		if strings.Contains(arg, PathPlaceholder) {
			arg = strings.ReplaceAll(arg, PathPlaceholder, path)
			substituted = true
		}
		args = append(args, arg)
	}
	if !substituted {
		args = append(args, path)
	}
	return args
}

// SetBackground runs the configured command for path.
func (s *CommandSetter) SetBackground(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrValidation, component, "set background", "image path is empty", nil)
	}
	args := s.Args(path)
	logger := logging.WithContext(ctx, s.logger)

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		logging.ErrorWithContext(logger, "background command failed", "background_command_failed",
			logging.String("command", args[0]),
			logging.Duration("elapsed", elapsed),
			logging.String("output", truncate(output.String())),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check [background].command in the config file"))
		return services.Wrap(services.ErrExternalTool, component, "set background",
			fmt.Sprintf("%s failed: %s", args[0], truncate(output.String())), err)
	}

	logger.Info("desktop background set",
		logging.String("command", args[0]),
		logging.String("path", path),
		logging.Duration("elapsed", elapsed))
	return nil
}

func truncate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) <= outputLimit {
		return value
	}
	cut := outputLimit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut] + "..."
}
