package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xabinapal/ffpm/internal/config"
	"github.com/xabinapal/ffpm/internal/ini"
	"github.com/xabinapal/ffpm/internal/profile"
)

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name    string      `json:"name" yaml:"name"`
	Status  CheckStatus `json:"status" yaml:"status"`
	Message string      `json:"message" yaml:"message"`
	Fix     string      `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// CheckStatus represents the status of a diagnostic check.
type CheckStatus int

const (
	// CheckOK indicates the check passed.
	CheckOK CheckStatus = iota
	// CheckWarning indicates a non-critical issue.
	CheckWarning
	// CheckError indicates a critical failure.
	CheckError
	// CheckSkipped indicates the check was skipped.
	CheckSkipped
)

// String returns the status name.
func (s CheckStatus) String() string {
	switch s {
	case CheckOK:
		return "OK"
	case CheckWarning:
		return "WARN"
	case CheckError:
		return "ERROR"
	case CheckSkipped:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// Icon returns the status icon for display.
func (s CheckStatus) Icon() string {
	switch s {
	case CheckOK:
		return "[OK]"
	case CheckWarning:
		return "[!!]"
	case CheckError:
		return "[XX]"
	case CheckSkipped:
		return "[--]"
	default:
		return "[??]"
	}
}

// MarshalJSON implements json.Marshaler.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalYAML implements yaml.Marshaler.
func (s CheckStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// DoctorOutput represents the doctor command output for JSON and YAML.
type DoctorOutput struct {
	Checks      []CheckResult `json:"checks" yaml:"checks"`
	HasErrors   bool          `json:"has_errors" yaml:"has_errors"`
	HasWarnings bool          `json:"has_warnings" yaml:"has_warnings"`
}

// newDoctorCmd creates the doctor command.
func (cli *CLI) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify and troubleshoot common issues.

The doctor command checks:
  - Configuration file validity
  - profiles.ini presence and syntax
  - Firefox executable
  - Profile directories
  - Default profile

Examples:
  # Run diagnostics
  ffpm doctor

  # Output as JSON
  ffpm doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			results := cli.runDiagnostics()
			report := summarize(results)

			out := cmd.OutOrStdout()
			writeErr := output.Write(report, func() {
				fmt.Fprintln(out, "ffpm Diagnostics")
				fmt.Fprintln(out, "================")
				fmt.Fprintln(out)

				for _, r := range results {
					fmt.Fprintf(out, "%s %s", r.Status.Icon(), r.Name)
					if r.Message != "" {
						fmt.Fprintf(out, ": %s", r.Message)
					}
					fmt.Fprintln(out)

					if (r.Status == CheckError || r.Status == CheckWarning) && r.Fix != "" {
						fmt.Fprintf(out, "      -> %s\n", r.Fix)
					}
				}

				fmt.Fprintln(out)
				switch {
				case report.HasErrors:
					fmt.Fprintln(out, "Some checks failed.")
				case report.HasWarnings:
					fmt.Fprintln(out, "All critical checks passed with some warnings.")
				default:
					fmt.Fprintln(out, "All checks passed!")
				}
			})

			if writeErr != nil {
				return writeErr
			}

			if report.HasErrors {
				return errors.New("diagnostics failed")
			}
			return nil
		},
	}
}

// summarize wraps check results with their overall outcome.
func summarize(results []CheckResult) DoctorOutput {
	report := DoctorOutput{Checks: results}
	for _, r := range results {
		switch r.Status {
		case CheckError:
			report.HasErrors = true
		case CheckWarning:
			report.HasWarnings = true
		}
	}
	return report
}

func (cli *CLI) runDiagnostics() []CheckResult {
	var results []CheckResult

	// Check 1: Configuration file
	results = append(results, cli.checkConfigFile())

	// Check 2: Registry file
	records, registryCheck := cli.checkRegistry()
	results = append(results, registryCheck)

	// Check 3: Firefox executable
	results = append(results, cli.checkBinary())

	// Checks 4-6 need a readable registry
	if records == nil {
		for _, name := range []string{"Profile names", "Profile directories", "Default profile"} {
			results = append(results, CheckResult{
				Name:    name,
				Status:  CheckSkipped,
				Message: "profiles.ini not readable",
			})
		}
		return results
	}

	results = append(results, checkProfileNames(records))
	results = append(results, checkProfileDirs(records))
	results = append(results, checkDefaultProfile(records))

	return results
}

func (cli *CLI) checkConfigFile() CheckResult {
	path := cli.Config.FilePath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckOK,
			Message: "not found, using defaults",
		}
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckError,
			Message: fmt.Sprintf("invalid: %v", err),
			Fix:     "Run 'ffpm config validate' to see detailed errors",
		}
	}
	if err := cfg.Validate(); err != nil {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckError,
			Message: strings.Join(splitErrors(err), "; "),
			Fix:     "Run 'ffpm config edit' to fix the settings",
		}
	}

	return CheckResult{
		Name:    "Configuration file",
		Status:  CheckOK,
		Message: path,
	}
}

// checkRegistry parses profiles.ini. It returns nil records when the file
// could not be read, and an empty slice when there is no file yet.
func (cli *CLI) checkRegistry() ([]profile.Record, CheckResult) {
	if _, err := os.Stat(cli.registryPath); os.IsNotExist(err) {
		return []profile.Record{}, CheckResult{
			Name:    "profiles.ini",
			Status:  CheckWarning,
			Message: fmt.Sprintf("not found at %s", cli.registryPath),
			Fix:     "Start Firefox once, or run 'ffpm profile create <name>' to create it",
		}
	}

	records, err := cli.registry().List()
	if err != nil {
		var parseErr *ini.ParseError
		fix := "Check that the file is readable"
		if errors.As(err, &parseErr) {
			fix = fmt.Sprintf("Fix profiles.ini near line %d by hand or restore a backup", parseErr.Line)
		}
		return nil, CheckResult{
			Name:    "profiles.ini",
			Status:  CheckError,
			Message: err.Error(),
			Fix:     fix,
		}
	}

	return records, CheckResult{
		Name:    "profiles.ini",
		Status:  CheckOK,
		Message: fmt.Sprintf("%s (%d profiles)", cli.registryPath, len(records)),
	}
}

func (cli *CLI) checkBinary() CheckResult {
	binary := cli.Config.Firefox.Executable()

	if err := cli.Config.Firefox.ValidateBinaryPath(); err != nil {
		return CheckResult{
			Name:    "Firefox executable",
			Status:  CheckError,
			Message: err.Error(),
			Fix:     "Set firefox.binary to an absolute path or a name in PATH",
		}
	}

	path, err := cli.Runner.LookPath(binary)
	if err != nil {
		return CheckResult{
			Name:    "Firefox executable",
			Status:  CheckError,
			Message: fmt.Sprintf("'%s' not found in PATH", binary),
			Fix:     "Install Firefox or set firefox.binary in the configuration",
		}
	}

	return CheckResult{
		Name:    "Firefox executable",
		Status:  CheckOK,
		Message: path,
	}
}

func checkProfileNames(records []profile.Record) CheckResult {
	seen := make(map[string]bool, len(records))
	var dups []string
	for _, r := range records {
		if seen[r.Name] {
			dups = append(dups, r.Name)
		}
		seen[r.Name] = true
	}

	if len(dups) > 0 {
		return CheckResult{
			Name:    "Profile names",
			Status:  CheckWarning,
			Message: fmt.Sprintf("duplicate names: %s", strings.Join(dups, ", ")),
			Fix:     "Rename duplicates in profiles.ini; only the first one can be used",
		}
	}
	return CheckResult{
		Name:    "Profile names",
		Status:  CheckOK,
		Message: "all unique",
	}
}

func checkProfileDirs(records []profile.Record) CheckResult {
	var missing []string
	for _, r := range records {
		if !r.Exists {
			missing = append(missing, r.Name)
		}
	}

	if len(missing) > 0 {
		return CheckResult{
			Name:    "Profile directories",
			Status:  CheckWarning,
			Message: fmt.Sprintf("missing for %s", strings.Join(missing, ", ")),
			Fix:     "Firefox recreates a missing directory on launch; delete the profile if it is no longer needed",
		}
	}
	return CheckResult{
		Name:    "Profile directories",
		Status:  CheckOK,
		Message: fmt.Sprintf("%d found", len(records)),
	}
}

func checkDefaultProfile(records []profile.Record) CheckResult {
	var defaults []string
	for _, r := range records {
		if r.IsDefault {
			defaults = append(defaults, r.Name)
		}
	}

	switch {
	case len(records) == 0:
		return CheckResult{
			Name:    "Default profile",
			Status:  CheckSkipped,
			Message: "no profiles",
		}
	case len(defaults) == 0:
		return CheckResult{
			Name:    "Default profile",
			Status:  CheckWarning,
			Message: "none set",
			Fix:     "Run 'ffpm profile default <name>'",
		}
	case len(defaults) > 1:
		return CheckResult{
			Name:    "Default profile",
			Status:  CheckWarning,
			Message: fmt.Sprintf("%d profiles marked default: %s", len(defaults), strings.Join(defaults, ", ")),
			Fix:     fmt.Sprintf("Run 'ffpm profile default %s' to keep only one", defaults[0]),
		}
	}
	return CheckResult{
		Name:    "Default profile",
		Status:  CheckOK,
		Message: defaults[0],
	}
}
