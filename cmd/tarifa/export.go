package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/tarifa/internal/cli"
	"github.com/Veraticus/tarifa/internal/config"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const defaultExportName = "tarifarios_filtrados.csv"

func exportCmd() *cobra.Command {
	var output string
	// Exports ignore pagination; the page only has to be valid.
	q := queryFlags{page: 1}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the filtered rates as CSV",
		Long: `Download every record matching the filters, in the requested order, as a
CSV file. Pagination does not apply: the export covers the whole result.

Use -o - to write the CSV to standard output.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, q, output)
		},
	}
	addFilterFlags(cmd, &q)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: the server-suggested name)")

	return cmd
}

func runExport(cmd *cobra.Command, q queryFlags, output string) error {
	state, err := q.state()
	if err != nil {
		return err
	}
	params, err := state.BuildExportQuery()
	if err != nil {
		return err
	}

	client, _, err := initClient()
	if err != nil {
		return err
	}

	slog.Debug("Exporting tarifarios", "url", client.ExportURL(params))
	dl, err := client.OpenExport(cmd.Context(), params)
	if err != nil {
		return fmt.Errorf("failed to start export: %w", err)
	}
	defer func() {
		if closeErr := dl.Body.Close(); closeErr != nil {
			slog.Warn("Failed to close export body", "error", closeErr)
		}
	}()

	if output == "-" {
		_, err := io.Copy(cmd.OutOrStdout(), dl.Body)
		return err
	}

	if output == "" {
		output = dl.Filename
	}
	if output == "" {
		output = defaultExportName
	}
	output = config.ExpandPath(output)

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	bar := progressbar.NewOptions64(dl.Size,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Downloading "+output),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	n, err := io.Copy(io.MultiWriter(f, bar), dl.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(output)
		return fmt.Errorf("failed to download export: %w", err)
	}
	_ = bar.Finish()

	slog.Info("Exported tarifarios", "file", output, "bytes", n)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved %s (%d bytes)", output, n)))
	return err
}
