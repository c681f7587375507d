package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lightlayer/pkg/store"
)

// storeCommand creates the preset store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the local preset store",
	}

	cmd.AddCommand(c.storeClearCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

// fileStore opens the file backend regardless of the configured backend.
func (c *CLI) fileStore(ctx context.Context) (*store.FileStore, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Store.Backend = store.BackendFile
	s, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if in, ok := s.(*store.Instrumented); ok {
		s = in.Unwrap()
	}
	fs, ok := s.(*store.FileStore)
	if !ok {
		return nil, fmt.Errorf("store is not file based")
	}
	return fs, nil
}

// storeClearCommand creates the "store clear" subcommand.
func (c *CLI) storeClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every preset in the file store",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := c.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := fs.Clear(); err != nil {
				return fmt.Errorf("clear store: %w", err)
			}
			printSuccess("Cleared preset store")
			printDetail("Directory: %s", fs.Dir())
			return nil
		},
	}
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file store directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := c.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fs.Dir())
			return nil
		},
	}
}
