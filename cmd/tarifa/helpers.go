package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/tarifa/internal/api"
	"github.com/Veraticus/tarifa/internal/common"
	"github.com/Veraticus/tarifa/internal/config"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/Veraticus/tarifa/internal/query"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const emptyText = "No data found."

// initClient loads the settings and builds an API client from them.
func initClient() (*api.Client, config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, config.Settings{}, common.NewUserError("Invalid configuration", err)
	}

	client, err := api.NewClient(settings.BaseURL,
		api.WithTimeout(settings.Timeout),
		api.WithRequestsPerSecond(settings.RequestsPerSecond),
	)
	if err != nil {
		return nil, config.Settings{}, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, settings, nil
}

// queryFlags are the filter, sort and page flags shared by the data commands.
type queryFlags struct {
	sortBy   string
	criteria model.FilterCriteria
	page     int
	desc     bool
}

func addFilterFlags(cmd *cobra.Command, q *queryFlags) {
	f := cmd.Flags()
	f.StringVar(&q.criteria.Banco, "banco", "", "exact bank name")
	f.StringVar(&q.criteria.Tipo, "tipo", "", "exact type (TASA, COMISION, GASTO, SEGURO)")
	f.StringVar(&q.criteria.Moneda, "moneda", "", "exact currency (MN, ME, AMBAS)")
	f.StringVar(&q.criteria.Producto, "producto", "", "text contained in the product name")
	f.StringVar(&q.criteria.Concepto, "concepto", "", "text contained in the concept")
	f.StringVar(&q.criteria.TasaMNGte, "tasa-mn-min", "", "minimum local-currency rate")
	f.StringVar(&q.criteria.TasaMNLte, "tasa-mn-max", "", "maximum local-currency rate")
	f.StringVar(&q.criteria.TasaMEGte, "tasa-me-min", "", "minimum foreign-currency rate")
	f.StringVar(&q.criteria.TasaMELte, "tasa-me-max", "", "maximum foreign-currency rate")
	f.StringVar(&q.sortBy, "sort-by", string(model.SortBanco), "sort column ("+sortColumnList()+")")
	f.BoolVar(&q.desc, "desc", false, "sort descending")
}

func addPageFlag(cmd *cobra.Command, q *queryFlags) {
	cmd.Flags().IntVarP(&q.page, "page", "p", 1, "page number")
}

// state builds the query state the flags describe.
func (q queryFlags) state() (*query.State, error) {
	s := query.New()
	s.SetFilter(q.criteria)

	column := model.SortColumn(q.sortBy)
	if !column.IsSortable() {
		return nil, common.NewUserError(
			fmt.Sprintf("Cannot sort by %q; choose one of %s", q.sortBy, sortColumnList()), nil)
	}
	if s.Sort.Column != column {
		s.SetSort(column)
	}
	if q.desc != (s.Sort.Direction == model.Descending) {
		s.SetSort(column)
	}

	if q.page < 1 {
		return nil, common.NewUserError(fmt.Sprintf("Invalid page %d", q.page), nil)
	}
	if q.page > 1 {
		s.SetCurrentPage(q.page)
	}
	return s, nil
}

func sortColumnList() string {
	names := make([]string, len(model.SortColumns))
	for i, c := range model.SortColumns {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// parseRows turns "1,3" into zero-based indexes.
func parseRows(input string) ([]int, error) {
	var rows []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, common.NewUserError(fmt.Sprintf("Invalid row %q", part), err)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		rows = append(rows, n-1)
	}
	return rows, nil
}
