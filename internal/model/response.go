package model

// Page is one page of the remote dataset.
type Page struct {
	Items       []RateRecord `json:"items"`
	TotalItems  int          `json:"total_items"`
	TotalPages  int          `json:"total_pages"`
	CurrentPage int          `json:"current_page"`
}

// FilterOptions lists the distinct values offered by the filter selectors.
type FilterOptions struct {
	Bancos  []string `json:"bancos"`
	Tipos   []string `json:"tipos"`
	Monedas []string `json:"monedas"`
}

// Stats are the aggregate statistics of the whole dataset.
type Stats struct {
	TiposCount     map[string]int `json:"tipos_count,omitempty"`
	TasaPromedioMN *float64       `json:"tasa_promedio_mn"`
	TasaPromedioME *float64       `json:"tasa_promedio_me"`
	TotalRegistros int            `json:"total_registros"`
	BancosCount    int            `json:"bancos_count"`
}
