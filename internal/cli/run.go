package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raoulx24/dirsync/internal/app"
	"github.com/raoulx24/dirsync/internal/replicator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one replication pass and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		env, err := app.Build(cmd.Context(), cfg, log, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		r, err := replicator.New(env.ReplicatorOptions())
		if err != nil {
			return err
		}

		rep, err := r.Run(cmd.Context())
		for _, f := range rep.Failures {
			log.Error("directory not replicated", "target", f.Target, "error", f.Err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d directories, %d created, %d failed in %s\n",
			rep.RunID, rep.Directories, rep.Created, len(rep.Failures), rep.Duration)
		return err
	},
}
