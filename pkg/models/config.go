package models

type Config struct {
	Snowflake Snowflake `yaml:"snowflake"`
	Warehouse Warehouse `yaml:"warehouse"`
	Cortex    Cortex    `yaml:"cortex"`
	Ingest    Ingest    `yaml:"ingest"`
}

type Snowflake struct {
	Account   string `yaml:"account"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password,omitempty"` // empty when stored in the OS keyring
	Role      string `yaml:"role"`
	Warehouse string `yaml:"warehouse"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Timeout   string `yaml:"timeout"` // e.g. "30s"
}

// Warehouse names the tables the tool provisions and writes
type Warehouse struct {
	RawCallsTable        string `yaml:"raw_calls_table"`
	UsersTable           string `yaml:"users_table"`
	NormalizedCallsTable string `yaml:"normalized_calls_table"`
}

// Cortex controls which Cortex functions and search service are used
type Cortex struct {
	Model         string `yaml:"model"`          // model for COMPLETE, e.g. "mistral-large"
	SearchService string `yaml:"search_service"` // fully qualified Cortex search service name
	SearchLimit   int    `yaml:"search_limit"`   // default result cap for searches
}

// Ingest controls export parsing and normalization
type Ingest struct {
	ExportPath      string   `yaml:"export_path"`      // default transcript export file
	InternalDomains []string `yaml:"internal_domains"` // email domains excluded from customer lists
}

// Defaults fills zero-valued fields with sensible defaults
func (c *Config) Defaults() {
	if c.Warehouse.RawCallsTable == "" {
		c.Warehouse.RawCallsTable = "RAW_CALL_TRANSCRIPTS"
	}
	if c.Warehouse.UsersTable == "" {
		c.Warehouse.UsersTable = "CRM_USERS"
	}
	if c.Warehouse.NormalizedCallsTable == "" {
		c.Warehouse.NormalizedCallsTable = "CALL_TRANSCRIPTS"
	}
	if c.Cortex.Model == "" {
		c.Cortex.Model = "mistral-large"
	}
	if c.Cortex.SearchLimit <= 0 {
		c.Cortex.SearchLimit = 10
	}
	if c.Snowflake.Schema == "" {
		c.Snowflake.Schema = "PUBLIC"
	}
}
