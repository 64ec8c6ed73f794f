package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/tarifa/internal/cli"
	"github.com/Veraticus/tarifa/internal/format"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/Veraticus/tarifa/internal/pagination"
	"github.com/spf13/cobra"
)

var listHeaders = []string{"#", "Banco", "Producto", "Concepto", "Tipo", "Moneda", "Valor MN", "Valor ME"}

func listCmd() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of rates",
		Long: `Print one page of the filtered and sorted rate table, followed by the
pagination controls.

Row numbers in the first column can be passed to 'tarifa compare --rows'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, q)
		},
	}
	addFilterFlags(cmd, &q)
	addPageFlag(cmd, &q)

	return cmd
}

func runList(cmd *cobra.Command, q queryFlags) error {
	state, err := q.state()
	if err != nil {
		return err
	}
	params, err := state.BuildQueryParams()
	if err != nil {
		return err
	}

	client, _, err := initClient()
	if err != nil {
		return err
	}

	page, err := client.ListTarifarios(cmd.Context(), params)
	if err != nil {
		return fmt.Errorf("failed to list tarifarios: %w", err)
	}

	return printPage(cmd.OutOrStdout(), page)
}

func printPage(out io.Writer, page *model.Page) error {
	if len(page.Items) == 0 {
		_, err := fmt.Fprintln(out, cli.InfoStyle.Render(emptyText))
		return err
	}

	rows := make([][]string, len(page.Items))
	for i, r := range page.Items {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			model.Text(r.Banco),
			model.Text(r.ProductoNombre),
			model.Text(r.Concepto),
			model.Text(r.Tipo),
			model.Text(r.Moneda),
			format.MN(r),
			format.ME(r),
		}
	}
	if err := cli.WriteTable(out, listHeaders, rows); err != nil {
		return err
	}

	summary := fmt.Sprintf("Page %d of %d (%d records)", page.CurrentPage, page.TotalPages, page.TotalItems)
	if window := cli.FormatWindow(pagination.Compute(page.CurrentPage, page.TotalPages)); window != "" {
		summary += "   " + window
	}
	_, err := fmt.Fprintln(out, "\n"+cli.SubtleStyle.Render(summary))
	return err
}
