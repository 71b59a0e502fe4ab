// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/toeirei/chainmaster/internal/i18n"
	"github.com/toeirei/chainmaster/internal/model"
)

// readDeployRequest parses a YAML (or JSON, which is valid YAML) request file.
func readDeployRequest(path string) (model.DeployRequest, error) {
	var req model.DeployRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read request file: %w", err)
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse request file %s: %w", path, err)
	}
	if req.ChainName == "" {
		return req, errors.New("request file has no chain_name")
	}
	if len(req.Hosts) == 0 {
		return req, errors.New("request file lists no hosts")
	}
	return req, nil
}

func newDeployCmd() *cobra.Command {
	var file, imageCheck string
	cmd := &cobra.Command{
		Use:   "deploy -f request.yaml",
		Short: "Generate a chain across hosts and register it",
		Long: `Validates the request, checks every host, generates the chain
configuration and records chain, groups, nodes and fronts in one transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readDeployRequest(file)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("image-check") {
				imageCheck = appConfig.Deploy.ImageCheck
			}
			policy, err := model.ParseImageCheckPolicy(imageCheck)
			if err != nil {
				return err
			}
			svc, err := newChainService(cmd)
			if err != nil {
				return err
			}
			if err := svc.GenerateChainConfig(cmd.Context(), req, policy); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.deploy_ok", req.ChainName, req.ChainID, req.TotalNodes()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Deployment request file (YAML or JSON)")
	cmd.Flags().StringVar(&imageCheck, "image-check", "pull", `Image check policy ("pull" or "manual")`)
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
