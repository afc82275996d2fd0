package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/paperpress/paperpress/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// defaultBuildfile is used when no path is given; the tool behaves like the
// original "run me from the repo" scripts.
const defaultBuildfile = "reproduce.hcl"

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("paperpress", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
paperpress - reproducible builds for notebook-backed papers.

Usage:
  paperpress [options] [BUILDFILE]

Arguments:
  BUILDFILE
    Path to the project's .hcl buildfile. Defaults to reproduce.hcl in the
    current directory. All project paths resolve against the buildfile's own
    directory, so invocation is location-independent.

Options:
`)
		flagSet.PrintDefaults()
	}

	projectFlag := flagSet.String("project", "", "Path to the buildfile.")
	pFlag := flagSet.String("p", "", "Path to the buildfile (shorthand).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	maxPassesFlag := flagSet.Int("max-passes", 0, "Override the reference-resolution pass bound. 0 keeps the buildfile's value.")
	bestEffortFlag := flagSet.Bool("best-effort", false, "Continue past provisioning and notebook failures.")
	forceFlag := flagSet.Bool("force", false, "Reprovision and rebuild everything, ignoring the ledger memo.")
	watchFlag := flagSet.Bool("watch", false, "Stay resident and rebuild when sources change.")
	onlyFlag := flagSet.String("only", "", "Comma-separated target names to build. Empty builds everything.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := defaultBuildfile
	if *projectFlag != "" {
		path = *projectFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	var only []string
	for _, name := range strings.Split(*onlyFlag, ",") {
		if name = strings.TrimSpace(name); name != "" {
			only = append(only, name)
		}
	}

	config, err := app.NewConfig(app.Config{
		BuildfilePath: path,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		MaxPasses:     *maxPassesFlag,
		BestEffort:    *bestEffortFlag,
		Force:         *forceFlag,
		Watch:         *watchFlag,
		Only:          only,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}
