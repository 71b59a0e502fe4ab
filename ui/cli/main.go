// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, configuration loading and the wiring of
// the chain service shared by all subcommands.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/chainmaster/buildvars"
	"github.com/toeirei/chainmaster/internal/buildchain"
	"github.com/toeirei/chainmaster/internal/chain"
	"github.com/toeirei/chainmaster/internal/config"
	"github.com/toeirei/chainmaster/internal/db"
	"github.com/toeirei/chainmaster/internal/deploy"
	"github.com/toeirei/chainmaster/internal/health"
	"github.com/toeirei/chainmaster/internal/i18n"
	"github.com/toeirei/chainmaster/internal/layout"
	"github.com/toeirei/chainmaster/internal/logging"
	"github.com/toeirei/chainmaster/internal/nodeconf"
	"github.com/toeirei/chainmaster/internal/state"
	"golang.org/x/term"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var appConfig config.Config
var appStore *db.Store

// setupDefaultServices loads the configuration, selects language and log
// level and opens the store.
func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), configPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// first run: persist the defaults so there is a file to edit
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if err := logging.SetLevel(appConfig.Log.Level); err != nil {
		return err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		db.SetDebug(true)
		_ = logging.SetLevel("debug")
	}
	i18n.Init(appConfig.Language)

	if appStore != nil {
		_ = appStore.Close()
	}
	appStore, err = db.NewStoreFromDSN(appConfig.Database.Type, appConfig.Database.Dsn)
	if err != nil {
		return errors.New(i18n.T("cli.error_init_db", err))
	}
	return nil
}

func closeServices(*cobra.Command, []string) error {
	if appStore == nil {
		return nil
	}
	err := appStore.Close()
	appStore = nil
	return err
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// newChainService wires the chain service from the loaded configuration.
func newChainService(cmd *cobra.Command) (*chain.Service, error) {
	d := appConfig.Deploy

	key, err := deploy.LoadPrivateKey(d.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	if ask, _ := cmd.Flags().GetBool("ask-passphrase"); ask && len(key) > 0 {
		if err := promptPassphrase(cmd); err != nil {
			return nil, err
		}
	}
	pass := state.Passphrase.Get()
	defer func() {
		for i := range pass {
			pass[i] = 0
		}
	}()

	conn, err := deploy.NewConnector(deploy.Options{
		PrivateKey:      key,
		Passphrase:      pass,
		KnownHostsPath:  d.KnownHosts,
		Timeout:         d.ConnectTimeout,
		ImageRepository: d.ImageRepository,
	})
	if err != nil {
		return nil, err
	}

	l := layout.New(d.NodesRoot)
	svc := chain.NewService(appStore, chain.Deps{
		Hosts:   conn,
		Builder: &buildchain.Runner{Script: d.BuildScript, Layout: l, Timeout: d.BuildTimeout},
		Files:   l,
		Nodes:   nodeconf.Files{ContextPath: frontContextPath(appConfig.Front.HealthPath)},
		Checker: health.NewChecker(appConfig.Front.HealthPath, appConfig.Front.HealthTimeout, appConfig.Front.CheckConcurrency),
	}, chain.Options{
		DefaultFrontPort: d.DefaultFrontPort,
		ArchiveRemote:    d.ArchiveRemote,
	})
	return svc, nil
}

// frontContextPath derives the servlet context from the health path,
// "/WeBASE-Front/" -> "/WeBASE-Front".
func frontContextPath(healthPath string) string {
	p := strings.TrimRight(healthPath, "/")
	if p == "" {
		return nodeconf.DefaultContextPath
	}
	if i := strings.Index(p[1:], "/"); i >= 0 {
		p = p[:i+1]
	}
	return p
}

func promptPassphrase(cmd *cobra.Command) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("--ask-passphrase needs an interactive terminal")
	}
	fmt.Fprint(cmd.ErrOrStderr(), i18n.T("cli.passphrase_prompt"))
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}
	state.Passphrase.Set(pass)
	for i := range pass {
		pass[i] = 0
	}
	return nil
}

// Execute runs the CLI entrypoint.
func Execute() error {
	defer state.Passphrase.Clear()
	return NewRootCmd().Execute()
}

// NewRootCmd creates a fresh root command with all subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chainmaster",
		Short: "Chainmaster manages distributed ledger chains across remote hosts.",
		Long: `Chainmaster generates the configuration of a chain spread over several
hosts, keeps chains, groups, nodes and node fronts in a relational store,
reports deployment progress and tears chains down again.`,
		SilenceUsage:       true,
		PersistentPreRunE:  setupDefaultServices,
		PersistentPostRunE: closeServices,
	}
	cmd.Version = compositeVersion()

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose output (debug logs including SQL)")
	pf.String("config", "", "config file")
	pf.String("database.type", "sqlite", "Database type (sqlite, postgres, mysql)")
	pf.String("database.dsn", "./chainmaster.db", "Database connection string (DSN)")
	pf.String("language", "en", `Output language ("en", "de")`)
	pf.String("log.level", "info", "Log level (debug, info, warn, error)")
	pf.Bool("ask-passphrase", false, "Prompt for the passphrase of the SSH private key")

	cmd.AddCommand(
		newDeployCmd(),
		newChainCmd(),
		newWatchCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newDBMaintainCmd(),
		newReconcileCmd(),
		newVersionCmd(),
	)
	return cmd
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		// no config or database needed
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	var ok bool
	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
			ok = true
		}
	} else {
		ok = true
	}

	if ok && info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/chainmaster" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}

		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// fall back to the commit injected via ldflags
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}
