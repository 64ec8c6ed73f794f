// Package apitest serves an in-memory tarifarios API for tests.
package apitest

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/tarifa/internal/api"
	"github.com/Veraticus/tarifa/internal/format"
	"github.com/Veraticus/tarifa/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
)

// ExportFilename is sent in the Content-Disposition of CSV exports.
const ExportFilename = "tarifarios_filtrados.csv"

// listQuery is the query string accepted by the list and export endpoints.
// Rate bounds are numbers here, so malformed input is rejected like the real
// server does.
type listQuery struct {
	TasaMNGte *float64 `schema:"tasa_mn_gte"`
	TasaMNLte *float64 `schema:"tasa_mn_lte"`
	TasaMEGte *float64 `schema:"tasa_me_gte"`
	TasaMELte *float64 `schema:"tasa_me_lte"`
	Banco     string   `schema:"banco"`
	Tipo      string   `schema:"tipo"`
	Moneda    string   `schema:"moneda"`
	Producto  string   `schema:"producto"`
	Concepto  string   `schema:"concepto"`
	SortBy    string   `schema:"sort_by"`
	SortOrder string   `schema:"sort_order"`
	Skip      int      `schema:"skip"`
	Limit     int      `schema:"limit"`
}

// Hook runs before a request is answered. It may block.
type Hook func(r *http.Request)

// API is a fake of the remote API backed by a fixed record list.
type API struct {
	failures  map[string]int
	calls     map[string]int
	queries   map[string][]url.Values
	hook      Hook
	records   []model.RateRecord
	requestID []string
	mu        sync.Mutex
}

// New returns a fake serving records.
func New(records ...model.RateRecord) *API {
	return &API{
		records:  records,
		failures: make(map[string]int),
		calls:    make(map[string]int),
		queries:  make(map[string][]url.Values),
	}
}

// NewServer starts the fake on a local port and stops it when tb finishes.
func NewServer(tb testing.TB, records ...model.RateRecord) (*httptest.Server, *API) {
	tb.Helper()
	fake := New(records...)
	srv := httptest.NewServer(fake.Router())
	tb.Cleanup(srv.Close)
	return srv, fake
}

// Router builds the HTTP handler.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.track)
	r.Get(api.PathTarifarios, a.listHandler)
	r.Get(api.PathFilters, a.filtersHandler)
	r.Get(api.PathStats, a.statsHandler)
	r.Get(api.PathExportCSV, a.exportHandler)
	return r
}

// Fail makes every request to path answer with status. Zero restores normal
// behavior.
func (a *API) Fail(path string, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if status == 0 {
		delete(a.failures, path)
		return
	}
	a.failures[path] = status
}

// OnRequest installs a hook that runs before each request is answered.
func (a *API) OnRequest(h Hook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hook = h
}

// Calls returns how many requests path received.
func (a *API) Calls(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[path]
}

// Queries returns the query strings path received, oldest first.
func (a *API) Queries(path string) []url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]url.Values, len(a.queries[path]))
	copy(out, a.queries[path])
	return out
}

// RequestIDs returns every X-Request-ID seen.
func (a *API) RequestIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.requestID))
	copy(out, a.requestID)
	return out
}

func (a *API) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.calls[r.URL.Path]++
		a.queries[r.URL.Path] = append(a.queries[r.URL.Path], r.URL.Query())
		a.requestID = append(a.requestID, r.Header.Get(api.RequestIDHeader))
		status := a.failures[r.URL.Path]
		hook := a.hook
		a.mu.Unlock()

		if hook != nil {
			hook(r)
		}
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) listHandler(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	if q.Limit <= 0 {
		q.Limit = model.PageSize
	}
	if q.Skip < 0 {
		q.Skip = 0
	}

	rows := a.filtered(q)
	page := model.Page{Items: []model.RateRecord{}, CurrentPage: 1}
	if len(rows) > 0 {
		page.TotalItems = len(rows)
		page.TotalPages = (len(rows) + q.Limit - 1) / q.Limit
		page.CurrentPage = q.Skip/q.Limit + 1
		end := min(q.Skip+q.Limit, len(rows))
		if q.Skip < end {
			page.Items = rows[q.Skip:end]
		}
	}
	writeJSON(w, page)
}

func (a *API) filtersHandler(w http.ResponseWriter, _ *http.Request) {
	opts := model.FilterOptions{
		Bancos:  a.distinct(model.KeyBanco),
		Tipos:   a.distinct(model.KeyTipo),
		Monedas: a.distinct(model.KeyMoneda),
	}
	writeJSON(w, opts)
}

func (a *API) statsHandler(w http.ResponseWriter, _ *http.Request) {
	zero := 0.0
	stats := model.Stats{
		TotalRegistros: len(a.records),
		BancosCount:    len(a.distinct(model.KeyBanco)),
		TiposCount:     make(map[string]int),
	}
	if len(a.records) == 0 {
		stats.TasaPromedioMN = &zero
		stats.TasaPromedioME = &zero
		writeJSON(w, stats)
		return
	}

	var mn, me []float64
	for _, rec := range a.records {
		if rec.Tipo != nil {
			stats.TiposCount[*rec.Tipo]++
		}
		if rec.TasaPorcentajeMN != nil {
			mn = append(mn, *rec.TasaPorcentajeMN)
		}
		if rec.TasaPorcentajeME != nil {
			me = append(me, *rec.TasaPorcentajeME)
		}
	}
	stats.TasaPromedioMN = mean(mn)
	stats.TasaPromedioME = mean(me)
	writeJSON(w, stats)
}

func (a *API) exportHandler(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	rows := a.filtered(q)

	var columns []string
	seen := make(map[string]bool)
	for _, rec := range a.records {
		for _, key := range rec.Keys() {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+ExportFilename)

	cw := csv.NewWriter(w)
	_ = cw.Write(columns)
	for _, rec := range rows {
		line := make([]string, len(columns))
		for i, key := range columns {
			v, _ := rec.Get(key)
			line[i] = format.Raw(v)
		}
		_ = cw.Write(line)
	}
	cw.Flush()
}

// filtered applies the filters and the sort of q, like the real server.
func (a *API) filtered(q listQuery) []model.RateRecord {
	var rows []model.RateRecord
	for _, rec := range a.records {
		if matches(rec, q) {
			rows = append(rows, rec)
		}
	}

	column := model.SortColumn(q.SortBy)
	if q.SortBy == "" || !a.hasColumn(q.SortBy) {
		return rows
	}
	desc := q.SortOrder == string(model.Descending)
	sort.SliceStable(rows, func(i, j int) bool {
		vi, _ := rows[i].Get(string(column))
		vj, _ := rows[j].Get(string(column))
		// Nulls go last in either direction.
		if vi == nil || vj == nil {
			return vi != nil && vj == nil
		}
		if desc {
			return less(vj, vi)
		}
		return less(vi, vj)
	})
	return rows
}

func (a *API) hasColumn(key string) bool {
	for _, rec := range a.records {
		if _, ok := rec.Get(key); ok {
			return true
		}
	}
	return false
}

func (a *API) distinct(key string) []string {
	set := make(map[string]bool)
	for _, rec := range a.records {
		if v, ok := rec.Get(key); ok {
			if s, ok := v.(string); ok {
				set[s] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func matches(rec model.RateRecord, q listQuery) bool {
	if q.Banco != "" && model.Text(rec.Banco) != q.Banco {
		return false
	}
	if q.Tipo != "" && model.Text(rec.Tipo) != q.Tipo {
		return false
	}
	if q.Moneda != "" && model.Text(rec.Moneda) != q.Moneda {
		return false
	}
	if q.Producto != "" && !containsFold(rec.ProductoNombre, q.Producto) {
		return false
	}
	if q.Concepto != "" && !containsFold(rec.Concepto, q.Concepto) {
		return false
	}
	return within(rec.TasaPorcentajeMN, q.TasaMNGte, q.TasaMNLte) &&
		within(rec.TasaPorcentajeME, q.TasaMEGte, q.TasaMELte)
}

func containsFold(field *string, needle string) bool {
	if field == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*field), strings.ToLower(needle))
}

// within reports whether v satisfies both optional bounds. A null value
// fails any bound.
func within(v, gte, lte *float64) bool {
	if gte == nil && lte == nil {
		return true
	}
	if v == nil {
		return false
	}
	if gte != nil && *v < *gte {
		return false
	}
	if lte != nil && *v > *lte {
		return false
	}
	return true
}

func less(a, b any) bool {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return x < y
		}
	case string:
		if y, ok := b.(string); ok {
			return x < y
		}
	}
	return format.Raw(a) < format.Raw(b)
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).Float64()
	return &avg
}

func decodeQuery(w http.ResponseWriter, r *http.Request) (listQuery, bool) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	q := listQuery{Limit: model.PageSize, SortOrder: string(model.Ascending)}
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return q, false
	}
	return q, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
