package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/xabinapal/ffpm/internal/config"
)

// configPathOutput represents config path output for JSON and YAML.
type configPathOutput struct {
	ConfigFile     string `json:"config_file" yaml:"config_file"`
	ConfigDir      string `json:"config_dir" yaml:"config_dir"`
	DataDir        string `json:"data_dir" yaml:"data_dir"`
	HistoryFile    string `json:"history_file" yaml:"history_file"`
	Registry       string `json:"registry" yaml:"registry"`
	ConfigExists   bool   `json:"config_exists" yaml:"config_exists"`
	RegistryExists bool   `json:"registry_exists" yaml:"registry_exists"`
}

// validationResult represents validation output for JSON and YAML.
type validationResult struct {
	Valid      bool     `json:"valid" yaml:"valid"`
	ConfigFile string   `json:"config_file" yaml:"config_file"`
	Binary     string   `json:"binary" yaml:"binary"`
	Registry   string   `json:"registry" yaml:"registry"`
	Errors     []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// newConfigCmd creates the config command group.
func (cli *CLI) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ffpm configuration",
		Long: `Manage the ffpm configuration file.

Use 'ffpm config init' to write a configuration file with the defaults.
Use 'ffpm config path' to see configuration file locations.
Use 'ffpm config edit' to open the configuration in your editor.`,
	}

	cmd.AddCommand(
		cli.newConfigPathCmd(),
		cli.newConfigShowCmd(),
		cli.newConfigInitCmd(),
		cli.newConfigValidateCmd(),
		cli.newConfigEditCmd(),
	)

	return cmd
}

// newConfigPathCmd creates the config path command.
func (cli *CLI) newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			paths := config.GetPaths()

			_, configErr := os.Stat(cli.Config.FilePath())
			_, registryErr := os.Stat(cli.registryPath)
			result := configPathOutput{
				ConfigFile:     cli.Config.FilePath(),
				ConfigDir:      paths.ConfigDir,
				DataDir:        paths.DataDir,
				HistoryFile:    paths.HistoryFile,
				Registry:       cli.registryPath,
				ConfigExists:   configErr == nil,
				RegistryExists: registryErr == nil,
			}

			out := cmd.OutOrStdout()
			return output.Write(result, func() {
				fmt.Fprintln(out, "Configuration paths:")
				fmt.Fprintf(out, "  Config file:   %s\n", result.ConfigFile)
				fmt.Fprintf(out, "  Config dir:    %s\n", result.ConfigDir)
				fmt.Fprintf(out, "  Data dir:      %s\n", result.DataDir)
				fmt.Fprintf(out, "  Shell history: %s\n", result.HistoryFile)
				fmt.Fprintf(out, "  profiles.ini:  %s\n", result.Registry)

				fmt.Fprintln(out, "\nStatus:")
				if result.ConfigExists {
					fmt.Fprintln(out, "  Config file exists")
				} else {
					fmt.Fprintln(out, "  Config file does not exist (using defaults)")
				}
				if result.RegistryExists {
					fmt.Fprintln(out, "  profiles.ini exists")
				} else {
					fmt.Fprintln(out, "  profiles.ini does not exist")
				}
			})
		},
	}
}

// newConfigShowCmd creates the config show command.
func (cli *CLI) newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			if !output.IsText() {
				return output.Write(cli.Config, nil)
			}

			data, err := cli.Config.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cli.Config.FilePath(), data)
			return nil
		},
	}
}

// newConfigInitCmd creates the config init command.
func (cli *CLI) newConfigInitCmd() *cobra.Command {
	var (
		force        bool
		binary       string
		registryPath string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default settings",
		Long: `Write a configuration file with the default settings.

An existing file is left alone unless --force is given.

Examples:
  ffpm config init
  ffpm config init --binary /usr/bin/firefox-esr
  ffpm config init --registry-path ~/snap/firefox/common/.mozilla/firefox/profiles.ini`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cli.Config.FilePath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file %s already exists: use --force to overwrite", path)
			}

			cfg := config.Default()
			cfg.SetFilePath(path)
			if binary != "" {
				cfg.Firefox.Binary = binary
			}
			cfg.RegistryPath = registryPath

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			cli.Config = cfg

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration saved to: %s\n", path)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Run 'ffpm doctor' to check your setup")
			fmt.Fprintln(out, "  2. Run 'ffpm profile list' to see your profiles")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
	cmd.Flags().StringVar(&binary, "binary", "", "Firefox executable")
	cmd.Flags().StringVar(&registryPath, "registry-path", "", "profiles.ini location (default: platform default)")

	return cmd
}

// newConfigValidateCmd creates the config validate command.
func (cli *CLI) newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			// Reload so edits made since startup are seen.
			cfg, err := config.LoadFrom(cli.Config.FilePath())
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			result := validationResult{
				Valid:      true,
				ConfigFile: cfg.FilePath(),
				Binary:     cfg.Firefox.Executable(),
			}
			if registry, err := cfg.ResolveRegistryPath(""); err == nil {
				result.Registry = registry
			}
			if err := cfg.Validate(); err != nil {
				result.Valid = false
				result.Errors = splitErrors(err)
			}

			out := cmd.OutOrStdout()
			writeErr := output.Write(result, func() {
				fmt.Fprintln(out, "Configuration validation:")
				fmt.Fprintf(out, "  Config file:  %s\n", result.ConfigFile)
				fmt.Fprintf(out, "  Binary:       %s\n", result.Binary)
				fmt.Fprintf(out, "  profiles.ini: %s\n", result.Registry)

				fmt.Fprintln(out)
				if result.Valid {
					fmt.Fprintln(out, "Configuration is valid")
					return
				}
				fmt.Fprintln(out, "Configuration has errors:")
				for _, e := range result.Errors {
					fmt.Fprintf(out, "  - %s\n", e)
				}
			})

			if writeErr != nil {
				return writeErr
			}

			if !result.Valid {
				return errors.New("configuration has errors")
			}
			return nil
		},
	}
}

// splitErrors flattens an errors.Join result into its messages.
func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}

// newConfigEditCmd creates the config edit command.
func (cli *CLI) newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open configuration file in editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = os.Getenv("VISUAL")
			}
			if editor == "" {
				// Try common editors
				for _, e := range []string{"vim", "vi", "nano", "notepad"} {
					if _, err := exec.LookPath(e); err == nil {
						editor = e
						break
					}
				}
			}
			if editor == "" {
				return errors.New("no editor found: set $EDITOR environment variable")
			}

			configPath := cli.Config.FilePath()

			// Ensure config file exists
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := cli.Config.Save(); err != nil {
					return fmt.Errorf("failed to create config file: %w", err)
				}
			}

			// #nosec G204 - editor is from $EDITOR env var (user-controlled but expected), configPath is from config file path (controlled)
			editorCmd := exec.Command(editor, configPath)
			editorCmd.Stdin = cmd.InOrStdin()
			editorCmd.Stdout = cmd.OutOrStdout()
			editorCmd.Stderr = cmd.ErrOrStderr()

			return editorCmd.Run()
		},
	}
}
