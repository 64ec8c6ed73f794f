package api

// RequestsTotal exposes the request counter to external tests.
var RequestsTotal = requestsTotal
