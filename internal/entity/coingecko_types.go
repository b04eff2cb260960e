package entity

// MarketChartResponse is the body of /coins/{id}/market_chart/range.
// Each entry is [timestamp_ms, value].
type MarketChartResponse struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// CoingeckoErrorResponse is returned by CoinGecko on failed requests.
type CoingeckoErrorResponse struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}
