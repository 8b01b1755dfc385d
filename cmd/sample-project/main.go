// Command sample-project writes a synthetic student project for trying the
// grader end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/autograder/internal/testprojects"
	"github.com/okian/autograder/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		profile string
		dir     string
		name    string
		noGit   bool
	)
	cmd := &cobra.Command{
		Use:   "sample-project",
		Short: "Write a synthetic project to grade",
		Long: `Sample-project writes a small Python project in one of three shapes:
  good   passes every check
  weak   undocumented single commit
  leaky  good plus a hardcoded cloud key`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			p, err := testprojects.Generate(cmd.Context(), testprojects.Config{
				Dir:     dir,
				Name:    name,
				Profile: testprojects.Profile(profile),
				Git:     !noGit,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Path)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&profile, "profile", "p", string(testprojects.ProfileGood), "project shape: good, weak or leaky")
	fl.StringVarP(&dir, "dir", "d", ".", "parent directory")
	fl.StringVarP(&name, "name", "n", "", "project directory name (default: project-<random>)")
	fl.BoolVar(&noGit, "no-git", false, "skip the commit history")
	return cmd
}
