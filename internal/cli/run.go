package cli

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lightlayer/internal/server"
)

// runCommand creates the run command that drives the frame loop.
func (c *CLI) runCommand() *cobra.Command {
	var (
		serve  bool
		addr   string
		tui    bool
		preset string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Map the layout and render frames until interrupted",
		Long: `Map the layout and render frames until interrupted.

The run command builds an engine from the config file, runs one layout cycle
and renders frames at the configured rate. With --serve it also exposes the
HTTP control API; with --tui it shows a live dashboard instead of logs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEngine(cmd.Context(), runOptions{
				serve:  serve,
				addr:   addr,
				tui:    tui,
				preset: preset,
			})
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "serve the HTTP control API")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default: server.addr from the config)")
	cmd.Flags().BoolVar(&tui, "tui", false, "show a live dashboard")
	cmd.Flags().StringVar(&preset, "preset", "", "load this preset after the config nodes")

	return cmd
}

type runOptions struct {
	serve  bool
	addr   string
	tui    bool
	preset string
}

func (c *CLI) runEngine(ctx context.Context, opts runOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.tui {
		c.Logger.SetOutput(io.Discard)
	}
	eng, st, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.preset != "" {
		p, err := eng.LoadPreset(ctx, opts.preset)
		if p == nil {
			return err
		}
		if err != nil {
			c.Logger.Warn("preset applied with errors", "name", p.Name, "err", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return eng.Run(ctx) })

	if opts.serve {
		addr := opts.addr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		srv := server.New(eng, c.Logger)
		g.Go(func() error { return srv.ListenAndServe(ctx, addr) })
	}

	if opts.tui {
		g.Go(func() error {
			defer cancel()
			p := tea.NewProgram(NewDashboardModel(eng), tea.WithContext(ctx), tea.WithAltScreen())
			_, err := p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		})
	} else {
		printInfo("Rendering at %d fps, press Ctrl+C to stop", cfg.Engine.FPS)
	}

	return g.Wait()
}
