package main

import (
	"encoding/json"
	"io"

	"github.com/Sternrassler/breeds-proxy/pkg/pagination"
	"github.com/spf13/cobra"
)

func listCmd(opts *globalOptions) *cobra.Command {
	var (
		page   int
		limit  int
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of breeds as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupOneShot(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.svc.GetBreeds(cmd.Context(), page, limit, search)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVar(&page, "page", pagination.DefaultPage, "Page number (1-indexed)")
	cmd.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, "Items per page")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive name filter")

	return cmd
}

func getCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one breed as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupOneShot(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.svc.GetBreedByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

// setupOneShot wires an app for a single request; no janitor is started.
func setupOneShot(opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	cfg.Cache.SweepInterval = 0
	return newApp(cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
