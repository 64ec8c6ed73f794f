package main

import (
	"testing"

	"github.com/Veraticus/tarifa/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "two rows", input: "1,3", want: []int{0, 2}},
		{name: "spaces and trailing comma", input: " 2 , 5,", want: []int{1, 4}},
		{name: "duplicates dropped", input: "4,4,1", want: []int{3, 0}},
		{name: "empty", input: "", want: nil},
		{name: "zero", input: "0,1", wantErr: true},
		{name: "not a number", input: "a,b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRows(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryFlagsState(t *testing.T) {
	tests := []struct {
		name     string
		flags    queryFlags
		wantSort model.SortSpec
		wantPage int
		wantErr  bool
	}{
		{
			name:     "defaults",
			flags:    queryFlags{sortBy: string(model.SortBanco), page: 1},
			wantSort: model.SortSpec{Column: model.SortBanco, Direction: model.Ascending},
			wantPage: 1,
		},
		{
			name:     "default column descending",
			flags:    queryFlags{sortBy: string(model.SortBanco), desc: true, page: 1},
			wantSort: model.SortSpec{Column: model.SortBanco, Direction: model.Descending},
			wantPage: 1,
		},
		{
			name:     "other column descending on page 3",
			flags:    queryFlags{sortBy: string(model.SortTipo), desc: true, page: 3},
			wantSort: model.SortSpec{Column: model.SortTipo, Direction: model.Descending},
			wantPage: 3,
		},
		{
			name:    "unsortable column",
			flags:   queryFlags{sortBy: "Monto_Fijo_ME", page: 1},
			wantErr: true,
		},
		{
			name:    "page zero",
			flags:   queryFlags{sortBy: string(model.SortBanco), page: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.flags.state()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSort, s.Sort)
			assert.Equal(t, tt.wantPage, s.Page)
		})
	}
}

func TestQueryFlagsState_FiltersKept(t *testing.T) {
	q := queryFlags{
		criteria: model.FilterCriteria{Banco: "BCP", TasaMNGte: "5"},
		sortBy:   string(model.SortBanco),
		page:     2,
	}
	s, err := q.state()
	require.NoError(t, err)

	params, err := s.BuildQueryParams()
	require.NoError(t, err)
	assert.Equal(t, "BCP", params.Get("banco"))
	assert.Equal(t, "5", params.Get("tasa_mn_gte"))
	assert.Equal(t, "20", params.Get("skip"))
}
