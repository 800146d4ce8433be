package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erkantaylan/markview/internal/config"
	"github.com/erkantaylan/markview/internal/logger"
)

// flagKeys maps command flags onto config keys so flags win over every other source.
var flagKeys = map[string]string{
	"host":      "host",
	"port":      "port",
	"theme":     "theme",
	"width":     "view.width",
	"style":     "view.style",
	"log-level": "log.level",
}

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	v   *viper.Viper
	cfg config.Config
	log *logger.Logger
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command. Running it with a file starts the
// live viewer, the same as `serve`.
func NewRootCmd() *cobra.Command {
	var cfgPath string
	a := &app{}

	cmd := &cobra.Command{
		Use:           "markview [file]",
		Short:         "markview - live markdown viewer",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, cfgPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.serve(cmd, args[0])
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	addServeFlags(cmd)

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newRenderCmd(a))
	cmd.AddCommand(newTocCmd(a))
	cmd.AddCommand(newInfoCmd(a))
	cmd.AddCommand(newViewCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func (a *app) init(cmd *cobra.Command, cfgPath string) error {
	v := viper.New()
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	}
	if err := config.Load(v); err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	a.v = v
	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), level)
	return nil
}
