package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/xabinapal/ffpm/internal/config"
	"github.com/xabinapal/ffpm/internal/logging"
)

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

// newShellCmd creates the shell command.
func (cli *CLI) newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "shell",
		Aliases: []string{"repl"},
		Short:   "Start an interactive shell",
		Long: `Start an interactive shell that runs ffpm commands without the
'ffpm' prefix. Tab completes commands and profile names, and history is
kept between sessions.

Example session:
  ffpm> profile list
  ffpm> profile create "Web Testing"
  ffpm> profile launch "Web Testing"
  ffpm> exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runShell(cmd.Context())
		},
	}
}

// runShell reads and executes commands until exit or EOF.
func (cli *CLI) runShell(ctx context.Context) error {
	paths := config.GetPaths()
	historyFile := ""
	if err := paths.EnsureDirs(); err != nil {
		cli.Logger.Warn("shell history disabled", logging.Fields{"error": err.Error()})
	} else {
		historyFile = paths.HistoryFile
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "ffpm> ",
		HistoryFile:       historyFile,
		HistorySearchFold: true,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		AutoComplete:      cli.shellCompleter(),
		Stdout:            cli.out,
		Stderr:            cli.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(cli.out, "Type 'help' for commands, 'exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := cli.runShellLine(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(cli.errOut, "Error: %v\n", err)
		}
	}
}

// runShellLine executes one line of shell input on a fresh command tree.
// Flags given on the line apply to that line only.
func (cli *CLI) runShellLine(ctx context.Context, line string) error {
	args, err := shellquote.Split(line)
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "exit", "quit":
		return errQuit
	case "shell", "repl":
		return errors.New("already in a shell")
	}

	saved, level := cli.flags, cli.Logger.GetLevel()
	defer func() {
		cli.flags = saved
		cli.Logger.SetLevel(level)
	}()

	root := cli.newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// shellCompleter completes the command tree and, for commands that take a
// profile, the registered profile names.
func (cli *CLI) shellCompleter() *readline.PrefixCompleter {
	items := commandItems(cli.newRootCmd(), cli.getProfileNames)
	items = append(items,
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
	return readline.NewPrefixCompleter(items...)
}

// commandItems mirrors cmd's subcommands as completer items.
func commandItems(cmd *cobra.Command, names func() []string) []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, c := range cmd.Commands() {
		if c.Hidden || c.Name() == "shell" {
			continue
		}
		children := commandItems(c, names)
		if c.ValidArgsFunction != nil {
			children = append(children, readline.PcItemDynamic(func(string) []string {
				return names()
			}))
		}
		items = append(items, readline.PcItem(c.Name(), children...))
	}
	return items
}
