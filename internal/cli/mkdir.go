package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raoulx24/dirsync/internal/app"
	"github.com/raoulx24/dirsync/internal/config"
	"github.com/raoulx24/dirsync/internal/dircreate"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <source> <target>",
	Short: "Create one target directory like the source directory",
	Long: `mkdir creates the target directory with the configured retry policy. When
erasure-coding-policy is preserved and the source directory is erasure coded,
the same policy is set on the target.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		// the locations on the command line decide which filesystems to open
		cfg.Source, cfg.Target = args[0], args[1]
		if err := config.Validate(cfg); err != nil {
			return err
		}

		env, err := app.Build(cmd.Context(), cfg, log, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		srcFS, srcLoc, err := env.Registry.Resolve(args[0])
		if err != nil {
			return err
		}
		info, err := srcFS.Stat(cmd.Context(), srcLoc.Path)
		if err != nil {
			return err
		}

		created, err := dircreate.Create(cmd.Context(), env.Executor, dircreate.Args{
			Target:   args[1],
			Context:  env.Action,
			Source:   &info,
			SourceFS: srcFS,
		})
		if err != nil {
			return err
		}
		if !created {
			return fmt.Errorf("%s: not created, path is taken by a file", args[1])
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[1])
		return nil
	},
}
