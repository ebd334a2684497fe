package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JustJay7/ecourts-fetcher/internal/causelist"
	"github.com/JustJay7/ecourts-fetcher/internal/config"
	"github.com/JustJay7/ecourts-fetcher/internal/pdftext"
	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "causelist",
		Short: "Fetch and parse Indian court cause lists",
		Long: `causelist downloads a cause list (HTML or PDF) and prints the
entries it can recognise: case reference, parties, hearing date and bench.

Configuration is read from the environment and .env, as for the server.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(discoverCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() (*causelist.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.LogLevel, "console")
	if err != nil {
		return nil, err
	}

	ex, err := pdftext.New(cfg)
	if err != nil {
		return nil, err
	}

	return causelist.NewService(cfg, ex, nil, log), nil
}

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a cause list and print its entries",
		Long: `Fetch a cause list and print its entries.

Example:
  causelist fetch https://example.gov.in/causelist.pdf
  causelist fetch https://example.gov.in/causelist.html --format csv > list.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			svc, err := newService()
			if err != nil {
				return err
			}

			entries, err := svc.Entries(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load cause list: %w", err)
			}

			return render(cmd.OutOrStdout(), format, entries)
		},
	}

	cmd.Flags().String("format", "table", "Output format: table, csv or json")
	return cmd
}

func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover <url>",
		Short: "List cause-list documents linked from a listing page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			links, err := svc.Discover(args[0])
			if err != nil {
				return fmt.Errorf("failed to discover cause lists: %w", err)
			}

			for _, link := range links {
				fmt.Fprintln(cmd.OutOrStdout(), link)
			}
			if len(links) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No cause-list links found")
			}
			return nil
		},
	}
}

func render(w io.Writer, format string, entries []causelist.Entry) error {
	switch strings.ToLower(format) {
	case "csv":
		return causelist.WriteCSV(w, entries)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CASE\tPARTIES\tHEARING DATE\tBENCH")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CaseRef, e.Parties, e.HearingDate, e.Bench)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%d entries\n", len(entries))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, csv or json)", format)
	}
}
