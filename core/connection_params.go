package core

// ServiceConfig holds the values every query submission needs. It is passed in
// explicitly and never read from process globals.
type ServiceConfig struct {
	Region         string
	OutputLocation string
	Database       string
}

// ConnectionParams describe how to reach a query service backend.
type ConnectionParams struct {
	// Type is the backend alias, e.g. "athena" or "sqlite".
	Type string
	// URL is a backend specific endpoint or DSN. Optional for athena.
	URL string

	Region         string
	OutputLocation string
	Database       string

	// PageSize is the maximum number of rows per result page.
	PageSize int
	// RequestsPerSecond limits remote API calls. Zero means unlimited.
	RequestsPerSecond float64
}

// Expand returns a copy of the original parameters with expanded fields
func (p *ConnectionParams) Expand() *ConnectionParams {
	return &ConnectionParams{
		Type:              expandOrDefault(p.Type),
		URL:               expandOrDefault(p.URL),
		Region:            expandOrDefault(p.Region),
		OutputLocation:    expandOrDefault(p.OutputLocation),
		Database:          expandOrDefault(p.Database),
		PageSize:          p.PageSize,
		RequestsPerSecond: p.RequestsPerSecond,
	}
}

func (p *ConnectionParams) ServiceConfig() ServiceConfig {
	return ServiceConfig{
		Region:         p.Region,
		OutputLocation: p.OutputLocation,
		Database:       p.Database,
	}
}
