package source

// DataSource describes one upstream provider.
type DataSource struct {
	ID      int64
	Code    string
	Name    string
	BaseURL string
	Enabled bool
}

const (
	// CodeFootCSV is the bulk CSV-over-HTTP archive provider.
	CodeFootCSV = "footcsv"
	// CodeAPIFootball is the paginated JSON REST provider.
	CodeAPIFootball = "apifootball"
)
