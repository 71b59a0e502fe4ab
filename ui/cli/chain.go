// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/toeirei/chainmaster/internal/chain"
	"github.com/toeirei/chainmaster/internal/i18n"
	"github.com/toeirei/chainmaster/internal/model"
	"github.com/toeirei/chainmaster/internal/tui"
)

func parseChainID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid chain id %q", arg)
	}
	return id, nil
}

func newChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Manage registered chains",
	}
	cmd.AddCommand(
		newChainAddCmd(),
		newChainListCmd(),
		newChainShowCmd(),
		newChainRemoveCmd(),
		newChainProgressCmd(),
		newChainSetStatusCmd(),
	)
	return cmd
}

func newChainAddCmd() *cobra.Command {
	var c model.Chain
	var encrypt int
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a manually deployed chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.ID <= 0 {
				return errors.New("--id must be a positive chain id")
			}
			c.Name = args[0]
			c.EncryptType = model.EncryptType(encrypt)
			c.DeployType = model.DeployManual
			svc, err := newChainService(cmd)
			if err != nil {
				return err
			}
			saved, err := svc.NewChain(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.added", saved.Name, saved.ID))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&c.ID, "id", 0, "Chain id (required, must be unused)")
	f.StringVar(&c.Description, "description", "", "Free-form description")
	f.StringVar(&c.Version, "version", "", "Node image version")
	f.IntVar(&encrypt, "encrypt-type", 0, "0 for ECDSA, 1 for SM")
	f.StringVar(&c.ConsensusType, "consensus", "", "Consensus type")
	f.StringVar(&c.StorageType, "storage", "", "Storage type")
	return cmd
}

func newChainListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newChainService(cmd)
			if err != nil {
				return err
			}
			chains, err := svc.ListChains(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(chains) == 0 {
				fmt.Fprintln(out, i18n.T("cli.no_chains"))
				return nil
			}
			fmt.Fprintln(out, renderChainTable(chains))
			return nil
		},
	}
}

func renderChainTable(chains []model.Chain) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("ID", "NAME", "VERSION", "ENCRYPT", "DEPLOY", "STATUS", "MODIFIED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tui.HeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, c := range chains {
		t.Row(
			strconv.Itoa(c.ID),
			c.Name,
			c.Version,
			c.EncryptType.String(),
			c.DeployType.String(),
			c.Status.String(),
			c.ModifyTime.Format("2006-01-02 15:04:05"),
		)
	}
	return t.String()
}

func newChainShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a chain with its fronts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseChainID(args[0])
			if err != nil {
				return err
			}
			svc, err := newChainService(cmd)
			if err != nil {
				return err
			}
			c, err := svc.GetChain(cmd.Context(), id)
			if err != nil {
				return err
			}
			fronts, err := svc.Fronts(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  status=%s  version=%s  encrypt=%s\n", c, c.Status, c.Version, c.EncryptType)
			if c.Remark != "" {
				fmt.Fprintf(out, "remark: %s\n", c.Remark)
			}
			for _, f := range fronts {
				fmt.Fprintf(out, "  front %d  %s  node=%s  container=%s  status=%s\n",
					f.ID, f.Addr(), f.NodeID, f.ContainerName, f.Status)
			}
			return nil
		},
	}
}

func newChainRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a chain, its records and generated files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseChainID(args[0])
			if err != nil {
				return err
			}
			svc, err := newChainService(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := svc.GetChain(cmd.Context(), id); errors.Is(err, chain.ErrChainNotFound) {
				fmt.Fprintln(out, i18n.T("cli.remove_unknown", id))
				return nil
			}
			if err := svc.RemoveChain(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(out, i18n.T("cli.removed", id))
			return nil
		},
	}
}

func newChainProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id>",
		Short: "Print the deployment progress of a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseChainID(args[0])
			if err != nil {
				return err
			}
			svc, err := newChainService(cmd)
			if err != nil {
				return err
			}
			c, err := svc.GetChain(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.progress", c.Name, svc.Progress(cmd.Context(), c), c.Status))
			return nil
		},
	}
}

func newChainSetStatusCmd() *cobra.Command {
	var remark string
	cmd := &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Set the lifecycle status of a chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseChainID(args[0])
			if err != nil {
				return err
			}
			status, err := model.ParseChainStatus(args[1])
			if err != nil {
				return err
			}
			svc, err := newChainService(cmd)
			if err != nil {
				return err
			}
			ok, err := svc.UpdateStatus(cmd.Context(), id, status, remark)
			if err != nil {
				return err
			}
			if !ok {
				return &chain.Error{Code: chain.CodeChainNotFound, Detail: strconv.Itoa(id)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.status_updated", id, status))
			return nil
		},
	}
	cmd.Flags().StringVar(&remark, "remark", "", "Remark stored with the status")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow the deployment progress of a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseChainID(args[0])
			if err != nil {
				return err
			}
			svc, err := newChainService(cmd)
			if err != nil {
				return err
			}
			return tui.RunWatch(cmd.Context(), svc, id, interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval")
	return cmd
}
