package cortex

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"callsight/internal/common"
	"callsight/pkg/errors"
)

// SearchRequest is one query against a Cortex search service. The query
// string supports the service's AND/OR/NOT boolean operators.
type SearchRequest struct {
	Service string   `json:"-"`
	Query   string   `json:"query"`
	Columns []string `json:"columns,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// SearchHit is one ranked result row, keyed by requested column
type SearchHit map[string]interface{}

type searchResponse struct {
	Results []SearchHit `json:"results"`
}

// Search queries a Cortex search service and returns ranked hits
func (c *Service) Search(ctx context.Context, req SearchRequest) ([]SearchHit, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "Search query is empty")
	}

	// Service names are dotted identifiers and cannot be bound
	service, err := common.QualifiedName(strings.Split(req.Service, ".")...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidIdentifier, "Invalid search service name")
	}

	if req.Limit <= 0 {
		req.Limit = 10
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to encode search request")
	}

	var raw sql.NullString
	row := c.svc.QueryRowContext(ctx,
		"SELECT SNOWFLAKE.CORTEX.SEARCH_PREVIEW(?, ?)", service, string(payload))
	if err := row.Scan(&raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchFailed, "Search query failed").
			WithContext("service", service)
	}
	if !raw.Valid {
		return nil, errors.New(errors.ErrCodeSearchFailed, "Search service returned NULL").
			WithContext("service", service)
	}

	var resp searchResponse
	if err := json.Unmarshal([]byte(raw.String), &resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCortexParse, "Unexpected search response").
			WithContext("service", service)
	}

	return resp.Results, nil
}
