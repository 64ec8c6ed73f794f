package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/tarifa/internal/cli"
	"github.com/Veraticus/tarifa/internal/common"
	"github.com/Veraticus/tarifa/internal/compare"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/spf13/cobra"
)

func compareCmd() *cobra.Command {
	var (
		q    queryFlags
		rows string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare rows of a page side by side",
		Long: `Compare two or more records of one page attribute by attribute.

Rows are numbered as in 'tarifa list' with the same filters, sort and page.`,
		Example: `  tarifa compare --rows 1,3
  tarifa compare --banco BCP --page 2 --rows 1,2,5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd, q, rows)
		},
	}
	addFilterFlags(cmd, &q)
	addPageFlag(cmd, &q)
	cmd.Flags().StringVarP(&rows, "rows", "r", "", "comma-separated row numbers to compare")
	_ = cmd.MarkFlagRequired("rows")

	return cmd
}

func runCompare(cmd *cobra.Command, q queryFlags, rowSpec string) error {
	indexes, err := parseRows(rowSpec)
	if err != nil {
		return err
	}

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

	selected := compare.NewSet()
	for _, i := range indexes {
		if i >= len(page.Items) {
			return common.NewUserError(
				fmt.Sprintf("Row %d does not exist; page %d has %d rows", i+1, page.CurrentPage, len(page.Items)), nil)
		}
		selected.Include(page.Items[i])
	}

	return printComparison(cmd.OutOrStdout(), selected.Records())
}

func printComparison(out io.Writer, records []model.RateRecord) error {
	table, err := compare.BuildTable(records)
	if errors.Is(err, common.ErrNotEnoughRecords) {
		return common.NewUserError("Select at least two different rows to compare", err)
	}
	if err != nil {
		return err
	}

	headers := append([]string{"Atributo"}, table.Headers...)
	rows := make([][]string, len(table.Rows))
	for i, r := range table.Rows {
		rows[i] = append([]string{r.Label}, r.Values...)
	}

	if _, err := fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Comparison (%d)", len(records)))); err != nil {
		return err
	}
	return cli.WriteTable(out, headers, rows)
}
