package cli

import (
	"fmt"

	"github.com/cosmico/webinar/internal/app"
	"github.com/cosmico/webinar/internal/infra/config"
	"github.com/cosmico/webinar/internal/infra/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           app.Name,
		Short:         "Download the webinar recordings of an EventBrite organizer",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config.yaml (default ./config.yaml when present)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enables verbose mode")
	pf.StringP("proxy", "p", "", "use a proxy for every request")
	pf.Bool("no-verify", false, "disables TLS certificate verification")

	cmd.AddCommand(
		newDownloadCmd(opts),
		newHelpersCmd(opts),
		newHistoryCmd(opts),
	)

	return cmd
}

// persistentBindings maps config keys to the root flags that override them.
var persistentBindings = map[string]string{
	"http.proxy":                "proxy",
	"http.insecure_skip_verify": "no-verify",
}

// loadApp reads the configuration with the given command's flags layered on
// top and sets up logging.
func loadApp(cmd *cobra.Command, opts *rootOptions, bindings map[string]string) (*app.Context, error) {
	flags := make(map[string]*pflag.Flag, len(bindings)+len(persistentBindings))
	for _, set := range []map[string]string{persistentBindings, bindings} {
		for key, name := range set {
			flags[key] = cmd.Flags().Lookup(name)
		}
	}

	cfg, err := config.Load(opts.configPath, flags)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if opts.verbose {
		level = logger.LevelDebug
	}

	log, err := logger.New(cfg.Log.Path, level, cfg.Log.IncludeStdout)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return app.NewContext(cfg, log), nil
}
