// Package cli provides the command-line interface for ffpm.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xabinapal/ffpm/internal/config"
	"github.com/xabinapal/ffpm/internal/launcher"
	"github.com/xabinapal/ffpm/internal/logging"
	"github.com/xabinapal/ffpm/internal/notify"
	"github.com/xabinapal/ffpm/internal/profile"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	config   string
	registry string
	output   string
	verbose  bool
}

// CLI holds the application state for the CLI.
type CLI struct {
	Config   *config.Config
	Runner   launcher.Runner
	Notifier notify.Notifier
	Logger   *logging.Logger

	rootCmd *cobra.Command

	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	isTerminal func() bool

	// registryPath is the resolved profiles.ini location.
	registryPath string

	flags globalFlags
}

// New creates a new CLI instance.
func New() *CLI {
	cli := &CLI{
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
		isTerminal: stdinIsTerminal,
		flags:      globalFlags{output: string(OutputFormatText)},
	}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// newRootCmd builds the command tree. Flag defaults come from cli.flags, so
// the shell can build a fresh tree for every line it runs.
func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ffpm [command]",
		Short: "ffpm - Firefox profile manager",
		Long: `ffpm manages the profiles registered in Firefox's profiles.ini.

It lists, creates, renames and deletes profiles, marks one as the
default, and starts Firefox on a chosen profile. Run 'ffpm shell' for
an interactive session with tab completion.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.initialize(cmd)
		},
	}

	cmd.SetIn(cli.in)
	cmd.SetOut(cli.out)
	cmd.SetErr(cli.errOut)

	// Global flags
	cmd.PersistentFlags().StringVar(&cli.flags.config, "config", cli.flags.config, "Path to the configuration file")
	cmd.PersistentFlags().StringVar(&cli.flags.registry, "registry", cli.flags.registry, "Path to profiles.ini")
	cmd.PersistentFlags().StringVarP(&cli.flags.output, "output", "o", cli.flags.output, "Output format (text, json, yaml)")
	cmd.PersistentFlags().BoolVarP(&cli.flags.verbose, "verbose", "v", cli.flags.verbose, "Enable debug logging to stderr")
	// #nosec G104 - the flag is defined just above
	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFormats)

	cmd.AddCommand(
		cli.newVersionCmd(),
		cli.newProfileCmd(),
		cli.newConfigCmd(),
		cli.newDoctorCmd(),
		cli.newShellCmd(),
		cli.newCompletionCmd(),
	)

	return cmd
}

// initialize loads configuration and sets up the CLI. It runs before every
// command and only reloads what a flag asks it to.
func (cli *CLI) initialize(cmd *cobra.Command) error {
	if cli.Config == nil || cmd.Flags().Changed("config") {
		cfg, err := cli.loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cli.Config = cfg
	}

	if cli.Logger == nil {
		logger, err := cli.newLogger()
		if err != nil {
			return err
		}
		cli.Logger = logger
	}
	if cli.flags.verbose {
		cli.Logger.SetLevel(logging.LevelDebug)
	}

	path, err := cli.Config.ResolveRegistryPath(cli.flags.registry)
	if err != nil {
		return err
	}
	cli.registryPath = path

	if cli.Runner == nil {
		cli.Runner = launcher.New()
	}
	if cli.Notifier == nil {
		cli.Notifier = notify.New(cli.Config.Notifications)
	}

	cli.Logger.Debug("initialized", logging.Fields{
		"config":   cli.Config.FilePath(),
		"registry": cli.registryPath,
		"command":  cmd.CommandPath(),
	})
	return nil
}

// loadConfig reads the file named by --config, or the default one.
func (cli *CLI) loadConfig() (*config.Config, error) {
	if cli.flags.config == "" {
		return config.Load()
	}
	path, err := config.ExpandPath(cli.flags.config)
	if err != nil {
		return nil, err
	}
	return config.LoadFrom(path)
}

// newLogger builds the logger from the config; --verbose sends debug
// output to stderr instead.
func (cli *CLI) newLogger() (*logging.Logger, error) {
	if cli.flags.verbose {
		return logging.New(logging.Config{Level: logging.LevelDebug, Writer: cli.errOut})
	}

	logCfg, err := cli.Config.LoggerConfig()
	if err != nil {
		// Keep going so 'config validate' and 'doctor' can report it.
		logger, _ := logging.New(logging.Config{Level: logging.LevelWarn, Writer: cli.errOut})
		logger.Warn("ignoring log settings", logging.Fields{"error": err.Error()})
		return logger, nil
	}
	if logCfg.File == "" {
		logCfg.Writer = cli.errOut
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, nil
}

// registry opens the resolved profiles.ini with the configured behaviour.
func (cli *CLI) registry() *profile.Registry {
	return profile.New(cli.registryPath,
		profile.WithRunner(cli.Runner),
		profile.WithLogger(cli.Logger),
		profile.WithProtectDefault(cli.Config.Profiles.ProtectDefault),
		profile.WithSeedFiles(cli.Config.Profiles.SeedFiles),
		profile.WithLaunchArgs(cli.Config.Firefox.NewInstance, cli.Config.Firefox.ExtraArgs...),
	)
}

// outputWriter returns a writer for the --output format.
func (cli *CLI) outputWriter(cmd *cobra.Command) (*OutputWriter, error) {
	format, err := ParseOutputFormat(cli.flags.output)
	if err != nil {
		return nil, err
	}
	return NewOutputWriter(format, cmd.OutOrStdout()), nil
}

// notified logs a failed notification; notifications never fail a command.
func (cli *CLI) notified(err error) {
	if err != nil {
		cli.Logger.Debug("notification failed", logging.Fields{"error": err.Error()})
	}
}

// fail sends the failure notification for action and returns err.
func (cli *CLI) fail(action string, err error) error {
	if cli.Notifier != nil {
		cli.notified(cli.Notifier.NotifyFailure(action, err))
	}
	return err
}

// Execute runs the CLI.
func (cli *CLI) Execute(ctx context.Context) error {
	defer cli.close()
	return cli.rootCmd.ExecuteContext(ctx)
}

// close releases the log file, if any.
func (cli *CLI) close() {
	if cli.Logger != nil {
		// #nosec G104 - nothing left to report the error to
		_ = cli.Logger.Close()
	}
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
