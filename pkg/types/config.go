package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-impact/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ReferenceConfig locates the two reference tables. Each location is a
// local path or an http(s) URL.
type ReferenceConfig struct {
	HTTPConfig `yaml:",inline"`

	// CitationTable is the citation-percentile-by-age table (key column "age").
	CitationTable string `json:"citation_table" yaml:"citation_table"`

	// ProductivityTable is the paper-count-percentile-by-career-age table
	// (key column "years_since_first_pub").
	ProductivityTable string `json:"productivity_table" yaml:"productivity_table"`
}

// SourceBackend identifies where author publication lists come from.
type SourceBackend string

const (
	SourceFile            SourceBackend = "file"
	SourceOpenAlex        SourceBackend = "openalex"
	SourceSemanticScholar SourceBackend = "semantic_scholar"
)

// SourceConfig holds settings for the publication source adapters.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the source: file, openalex, or semantic_scholar.
	Backend SourceBackend `json:"backend" yaml:"backend"`

	// Dir is the directory read by the file backend; each author is stored
	// as [author-id].json or [author-id].yaml.
	Dir string `json:"dir" yaml:"dir"`

	// Email is sent to OpenAlex as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// RequestsPerSecond caps the request rate against the backend (default 5).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxWorks caps how many works are fetched per author (default 2000).
	MaxWorks int `json:"max_works" yaml:"max_works"`
}

// CacheConfig holds settings for the result cache.
type CacheConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`

	// TTL is how long cached bundles stay fresh. Zero means forever.
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// Disabled skips cache reads and writes.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// Config groups all settings.
type Config struct {
	Reference ReferenceConfig `json:"reference" yaml:"reference"`
	Source    SourceConfig    `json:"source" yaml:"source"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
}
