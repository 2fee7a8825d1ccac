package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hintrun/pkg/logging"
	"hintrun/pkg/runner"
	"hintrun/pkg/version"
)

// logger is set by Execute before the command runs.
var logger = zap.NewNop()

// exitCode is the outcome of the last lint run.
var exitCode = runner.ExitClean

// RootCmd is the base command when called without any subcommands.
// Flag parsing is left to the run itself so that value flags always
// consume the following token.
var RootCmd = &cobra.Command{
	Use:   version.AppName + " [options] <input> [<input> ...]",
	Short: "Run JSHint over JavaScript files and directories",
	Long: `hintrun checks JavaScript files with JSHint and reports problems on the
console and, with --output, in a plain-text or HTML report file.

Directories are searched recursively for .js files. An input literally
named "version" must be written as "./version".`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceErrors:      true,
	SilenceUsage:       true,
	CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		r := runner.New(
			runner.WithStdout(cmd.OutOrStdout()),
			runner.WithStderr(cmd.ErrOrStderr()),
			runner.WithLogger(logger),
			runner.WithVerboseHook(logging.SetVerbose),
		)
		res, err := r.Run(cmd.Context(), args)
		exitCode = runner.ExitCode(res, err)

		// Fatal run errors have already been printed with the usage block.
		var serr *runner.StateError
		if err != nil && !errors.As(err, &serr) {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
		return nil
	},
}

func init() {
	// An input named "help" is linted like any other path.
	RootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

// Execute runs the root command and returns the process exit code.
func Execute(l *zap.Logger) int {
	if l != nil {
		logger = l
	}
	exitCode = runner.ExitClean

	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("Command failed", zap.Error(err))
		fmt.Fprintln(RootCmd.ErrOrStderr(), err)
		return runner.ExitUsage
	}
	return exitCode
}
