package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/tarifa/internal/cli"
	"github.com/Veraticus/tarifa/internal/common"
	"github.com/Veraticus/tarifa/internal/controller"
	"github.com/Veraticus/tarifa/internal/format"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics and filter options",
		Long: `Show the aggregate statistics of the whole dataset (record and bank
counts, average rates, records per type) and the values each filter accepts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := initClient()
			if err != nil {
				return err
			}

			meta := controller.New(client).LoadInitialMetadata(cmd.Context())
			if meta.Stats == nil && meta.Options == nil {
				return common.NewUserError("Could not load statistics or filter options", common.ErrFetchFailed)
			}
			return printMetadata(cmd.OutOrStdout(), meta)
		},
	}
}

func printMetadata(out io.Writer, meta controller.Metadata) error {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("Tarifarios") + "\n")
	if meta.Stats != nil {
		b.WriteString(cli.RenderCards(format.StatCards(*meta.Stats)) + "\n\n")
	} else {
		b.WriteString(cli.FormatWarning("Statistics unavailable") + "\n\n")
	}

	if _, err := io.WriteString(out, b.String()); err != nil {
		return err
	}

	if meta.Stats != nil && len(meta.Stats.TiposCount) > 0 {
		tipos := format.TiposByCount(meta.Stats.TiposCount)
		rows := make([][]string, len(tipos))
		for i, tipo := range tipos {
			rows[i] = []string{tipo, strconv.Itoa(meta.Stats.TiposCount[tipo])}
		}
		if err := cli.WriteTable(out, []string{"Tipo", "Registros"}, rows); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}

	if meta.Options == nil {
		_, err := fmt.Fprintln(out, cli.FormatWarning("Filter options unavailable"))
		return err
	}
	for _, opt := range []struct {
		label  string
		values []string
	}{
		{"Bancos", meta.Options.Bancos},
		{"Tipos", meta.Options.Tipos},
		{"Monedas", meta.Options.Monedas},
	} {
		if _, err := fmt.Fprintf(out, "%s %s\n",
			cli.BoldStyle.Render(opt.label+":"), strings.Join(opt.values, ", ")); err != nil {
			return err
		}
	}
	return nil
}
