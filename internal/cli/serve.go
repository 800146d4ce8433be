package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/erkantaylan/markview/internal/markdown"
	"github.com/erkantaylan/markview/internal/server"
	"github.com/erkantaylan/markview/internal/viewer"
	"github.com/erkantaylan/markview/internal/viewstate"
	"github.com/erkantaylan/markview/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("port", 3000, "port to serve on")
	cmd.Flags().String("host", "localhost", "host to listen on")
	cmd.Flags().String("theme", "system", "initial theme (light, dark, system)")
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Serve a live preview of a markdown file",
		Example: "  markview serve README.md\n" +
			"  markview serve --port 8080 docs/guide.md",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd, args[0])
		},
	}
	addServeFlags(cmd)
	return cmd
}

func (a *app) serve(cmd *cobra.Command, path string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	renderer := markdown.NewRenderer(markdown.WithLogger(a.log))
	hub := server.NewHub(viewstate.Initial(a.cfg.InitialTheme()), a.log)
	go hub.Run(ctx)

	w := watcher.New(a.cfg.Watch.Debounce, a.log)
	session := viewer.NewSession(renderer, hub, w, hub.Current(), a.log)
	defer session.Close()

	if err := session.Open(path); err != nil {
		return err
	}

	srv := server.NewServer(hub, session, server.Options{
		Host:       a.cfg.Host,
		Port:       a.cfg.Port,
		LightStyle: a.cfg.Highlight.Light,
		DarkStyle:  a.cfg.Highlight.Dark,
	}, a.log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n  %s %s\n", titleStyle.Render("markview serving"), session.State().Filename)
	fmt.Fprintf(out, "  %s\n\n", linkStyle.Render("http://"+srv.Addr()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(out, dimStyle.Render("\nShutting down..."))
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
