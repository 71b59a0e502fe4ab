// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/chainmaster/internal/i18n"
	"github.com/toeirei/chainmaster/internal/logging"
	"github.com/toeirei/chainmaster/internal/reconcile"
)

func newReconcileCmd() *cobra.Command {
	var once bool
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Refresh front status and caches of all active chains",
		Long: `Checks the fronts of every chain that is not failed and updates their
status. Without --once it keeps running until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newChainService(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				interval = appConfig.Reconcile.Interval
			}
			task := reconcile.New(svc, interval)
			svc.SetNotifier(task)

			if once {
				res := task.RunOnce(cmd.Context())
				logging.Infof("reconcile: %d chains, %d skipped, %d fronts changed, %d errors",
					res.Chains, res.Skipped, res.Changed, res.Errors)
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.reconcile_done"))
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			task.Start(ctx)
			task.Trigger()
			<-ctx.Done()
			task.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single pass and exit")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "Time between passes")
	return cmd
}
