package cli

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xabinapal/ffpm/internal/config"
	"github.com/xabinapal/ffpm/internal/profile"
	"github.com/xabinapal/ffpm/internal/utils"
)

// ProfileListOutput represents profile list output for JSON and YAML.
type ProfileListOutput struct {
	Registry string           `json:"registry" yaml:"registry"`
	Profiles []profile.Record `json:"profiles" yaml:"profiles"`
}

// ProfileDeleteOutput represents profile delete output for JSON and YAML.
type ProfileDeleteOutput struct {
	Profile    profile.Record `json:"profile" yaml:"profile"`
	DirRemoved bool           `json:"dir_removed" yaml:"dir_removed"`
	Warning    string         `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// Sort orders accepted by 'profile list --sort'.
const (
	sortOrder = "order"
	sortName  = "name"
)

// newProfileCmd creates the profile command group.
func (cli *CLI) newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Manage Firefox profiles",
		Long: `Manage the profiles registered in Firefox's profiles.ini.

Examples:
  # List all profiles
  ffpm profile list

  # Create a profile and start Firefox with it
  ffpm profile create work
  ffpm profile launch work

  # Rename or delete a profile
  ffpm profile rename work office
  ffpm profile delete office --yes

  # Make a profile the default
  ffpm profile default personal`,
	}

	cmd.AddCommand(
		cli.newProfileListCmd(),
		cli.newProfileShowCmd(),
		cli.newProfileCreateCmd(),
		cli.newProfileRenameCmd(),
		cli.newProfileDeleteCmd(),
		cli.newProfileDefaultCmd(),
		cli.newProfileLaunchCmd(),
	)

	return cmd
}

// completeProfileNames completes the first positional argument with profile names.
func (cli *CLI) completeProfileNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if cli.registryPath == "" {
		if err := cli.initialize(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	}
	return cli.getProfileNames(), cobra.ShellCompDirectiveNoFileComp
}

// getProfileNames returns a list of all profile names for completion.
func (cli *CLI) getProfileNames() []string {
	if cli.registryPath == "" {
		return nil
	}
	records, err := cli.registry().List()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

// newProfileListCmd creates the profile list command.
func (cli *CLI) newProfileListCmd() *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			records, err := cli.registry().List()
			if err != nil {
				return err
			}
			if err := sortRecords(records, sortBy); err != nil {
				return err
			}

			return cli.printProfileList(cmd, output, records)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", sortOrder, "Sort by 'order' (file order) or 'name'")

	return cmd
}

// sortRecords orders records in place.
func sortRecords(records []profile.Record, by string) error {
	switch by {
	case sortOrder, "":
		return nil
	case sortName:
		sort.SliceStable(records, func(i, j int) bool {
			a, b := strings.ToLower(records[i].Name), strings.ToLower(records[j].Name)
			if a == b {
				return records[i].Name < records[j].Name
			}
			return a < b
		})
		return nil
	default:
		return fmt.Errorf("invalid sort order %q: must be 'order' or 'name'", by)
	}
}

func (cli *CLI) printProfileList(cmd *cobra.Command, output *OutputWriter, records []profile.Record) error {
	out := cmd.OutOrStdout()
	list := ProfileListOutput{
		Registry: cli.registryPath,
		Profiles: records,
	}

	if len(records) == 0 {
		return output.Write(list, func() {
			fmt.Fprintf(out, "No profiles found in %s.\n", cli.registryPath)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Create one with: ffpm profile create <name>")
		})
	}

	return output.Write(list, func() {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPATH\tMODIFIED")

		defaultName := ""
		for _, r := range records {
			marker := ""
			if r.IsDefault {
				marker = "* "
				defaultName = r.Name
			}

			modified := utils.FormatTimestamp(r.Modified)
			if !r.Exists {
				modified = "missing"
			}

			fmt.Fprintf(w, "%s%s\t%s\t%s\n", marker, r.Name, utils.Truncate(r.Path, maxPathWidth), modified)
		}

		// #nosec G104 - Flush error on stdout; if write fails, user will see incomplete output
		_ = w.Flush()

		if defaultName != "" {
			fmt.Fprintf(out, "\n* = default profile (%s)\n", defaultName)
		}
	})
}

// maxPathWidth caps the PATH column of profile list.
const maxPathWidth = 60

// newProfileShowCmd creates the profile show command.
func (cli *CLI) newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "show <name>",
		Aliases:           []string{"info"},
		Short:             "Show details of a profile",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.completeProfileNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			rec, err := cli.registry().Get(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return output.Write(rec, func() {
				fmt.Fprintf(out, "Name:       %s\n", rec.Name)
				fmt.Fprintf(out, "Path:       %s\n", rec.Path)
				fmt.Fprintf(out, "Relative:   %s\n", utils.YesNo(rec.IsRelative))
				fmt.Fprintf(out, "Directory:  %s\n", rec.Dir)
				fmt.Fprintf(out, "Default:    %s\n", utils.YesNo(rec.IsDefault))
				if rec.Exists {
					fmt.Fprintf(out, "Modified:   %s (%s)\n", utils.FormatTimestamp(rec.Modified), utils.FormatAge(rec.Modified, time.Now()))
				} else {
					fmt.Fprintln(out, "Modified:   directory missing")
				}
			})
		},
	}
}

// newProfileCreateCmd creates the profile create command.
func (cli *CLI) newProfileCreateCmd() *cobra.Command {
	var launch bool

	cmd := &cobra.Command{
		Use:     "create <name>",
		Aliases: []string{"add", "new"},
		Short:   "Create a new profile",
		Long: `Create a new profile and its directory next to profiles.ini.

Names may contain letters, digits, spaces, '-' and '_'. The directory is
named after the profile with a random prefix, like Firefox does.

Examples:
  ffpm profile create work
  ffpm profile create "Web Testing" --launch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			reg := cli.registry()
			rec, err := reg.Create(args[0])
			if err != nil {
				return cli.fail("create profile", err)
			}
			cli.notified(cli.Notifier.NotifyCreated(rec.Name))

			out := cmd.OutOrStdout()
			if err := output.Write(rec, func() {
				fmt.Fprintf(out, "Created profile %q\n", rec.Name)
				fmt.Fprintf(out, "  Directory: %s\n", rec.Dir)
			}); err != nil {
				return err
			}

			if launch {
				return cli.launch(cmd, rec.Name, "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&launch, "launch", false, "Start Firefox with the new profile")

	return cmd
}

// newProfileRenameCmd creates the profile rename command.
func (cli *CLI) newProfileRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "rename <old> <new>",
		Aliases:           []string{"mv"},
		Short:             "Rename a profile",
		Long:              "Rename a profile. Its directory keeps its current name.",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: cli.completeProfileNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			oldName, newName := args[0], args[1]
			rec, err := cli.registry().Rename(oldName, newName)
			if err != nil {
				return cli.fail("rename profile", err)
			}
			if oldName != newName {
				cli.notified(cli.Notifier.NotifyRenamed(oldName, newName))
			}

			out := cmd.OutOrStdout()
			return output.Write(rec, func() {
				fmt.Fprintf(out, "Renamed profile %q to %q\n", oldName, rec.Name)
			})
		},
	}
}

// newProfileDeleteCmd creates the profile delete command.
func (cli *CLI) newProfileDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm", "remove"},
		Short:   "Delete a profile and its directory",
		Long: `Delete a profile from profiles.ini and remove its directory.

This cannot be undone. You are asked to confirm unless --yes is given;
without a terminal to ask on, --yes is required.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.completeProfileNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			name := args[0]
			reg := cli.registry()

			rec, err := reg.Get(name)
			if err != nil {
				return err
			}
			// Protected defaults are refused before the prompt.
			if rec.IsDefault && cli.Config.Profiles.ProtectDefault {
				return cli.fail("delete profile", fmt.Errorf("%w: cannot delete %q", profile.ErrDefaultProfile, name))
			}

			if !yes {
				ok, err := cli.confirm(cmd, fmt.Sprintf("Delete profile %q and all data in %s?", name, rec.Dir))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			result, err := reg.Delete(name)
			if err != nil {
				return cli.fail("delete profile", err)
			}
			cli.notified(cli.Notifier.NotifyDeleted(name))

			deleted := ProfileDeleteOutput{
				Profile:    result.Record,
				DirRemoved: result.DirWarning == nil,
			}
			if result.DirWarning != nil {
				deleted.Warning = result.DirWarning.Error()
			}

			out := cmd.OutOrStdout()
			return output.Write(deleted, func() {
				fmt.Fprintf(out, "Deleted profile %q\n", name)
				if result.DirWarning != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: profile directory was not removed: %v\n", result.DirWarning)
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")

	return cmd
}

// errConfirmationRequired is returned when a prompt is needed but stdin is
// not a terminal.
var errConfirmationRequired = errors.New("confirmation required: re-run with --yes")

// confirm asks a yes/no question on the terminal. Anything but y/yes is no.
func (cli *CLI) confirm(cmd *cobra.Command, question string) (bool, error) {
	if !cli.isTerminal() {
		return false, errConfirmationRequired
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// newProfileDefaultCmd creates the profile default command.
func (cli *CLI) newProfileDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "default <name>",
		Aliases:           []string{"use"},
		Short:             "Make a profile the default",
		Long:              "Mark a profile as the one Firefox starts with when no profile is chosen.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.completeProfileNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			rec, err := cli.registry().SetDefault(args[0])
			if err != nil {
				return cli.fail("set default profile", err)
			}
			cli.notified(cli.Notifier.NotifyDefault(rec.Name))

			out := cmd.OutOrStdout()
			return output.Write(rec, func() {
				fmt.Fprintf(out, "Profile %q is now the default\n", rec.Name)
			})
		},
	}
}

// newProfileLaunchCmd creates the profile launch command.
func (cli *CLI) newProfileLaunchCmd() *cobra.Command {
	var binary string

	cmd := &cobra.Command{
		Use:     "launch <name>",
		Aliases: []string{"open", "run"},
		Short:   "Start Firefox with a profile",
		Long: `Start Firefox with a profile and return without waiting for it.

The executable is firefox.binary from the configuration unless --binary
is given. It is looked up in PATH when it is a bare name.

Examples:
  ffpm profile launch work
  ffpm profile launch work --binary /opt/firefox-nightly/firefox`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.completeProfileNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.launch(cmd, args[0], binary)
		},
	}

	cmd.Flags().StringVar(&binary, "binary", "", "Firefox executable to run")

	return cmd
}

// launch starts the browser on a profile and reports the process.
func (cli *CLI) launch(cmd *cobra.Command, name, binary string) error {
	output, err := cli.outputWriter(cmd)
	if err != nil {
		return err
	}

	if binary == "" {
		binary = cli.Config.Firefox.Executable()
	} else if expanded, err := config.ExpandPath(binary); err == nil {
		binary = expanded
	}

	result, err := cli.registry().Launch(name, binary)
	if err != nil {
		return cli.fail("launch profile", err)
	}
	cli.notified(cli.Notifier.NotifyLaunched(name, result.PID))

	out := cmd.OutOrStdout()
	return output.Write(result, func() {
		fmt.Fprintf(out, "Launched %s with profile %q (pid %d)\n", result.Executable, name, result.PID)
	})
}
