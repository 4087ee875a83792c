package cortex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"callsight/internal/snowflake"
	"callsight/pkg/errors"
)

// Service wraps the Snowflake Cortex SQL functions. Every call is a single
// text-in/text-or-score-out round trip; inputs are always bound, never
// interpolated.
type Service struct {
	svc   *snowflake.Service
	model string
}

// NewService creates a Cortex service using the given completion model
func NewService(svc *snowflake.Service, model string) *Service {
	return &Service{svc: svc, model: model}
}

// Classify assigns one of the given category labels to the text
func (c *Service) Classify(ctx context.Context, text string, categories []string) (string, error) {
	if len(categories) == 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "At least one category is required")
	}

	placeholders := make([]string, len(categories))
	args := make([]interface{}, 0, len(categories)+1)
	args = append(args, text)
	for i, cat := range categories {
		placeholders[i] = "?"
		args = append(args, cat)
	}

	query := fmt.Sprintf(
		"SELECT SNOWFLAKE.CORTEX.CLASSIFY_TEXT(?, ARRAY_CONSTRUCT(%s))",
		strings.Join(placeholders, ", "))

	raw, err := c.queryString(ctx, query, args...)
	if err != nil {
		return "", errors.CortexError("CLASSIFY_TEXT", err)
	}

	var result struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeCortexParse, "Unexpected CLASSIFY_TEXT response").
			WithContext("response", raw)
	}
	return result.Label, nil
}

// Filter evaluates a natural-language yes/no predicate against the text
func (c *Service) Filter(ctx context.Context, text, predicate string) (bool, error) {
	// PROMPT substitutes {0} with the bound transcript text
	template := predicate + "\n\n{0}"

	var result sql.NullBool
	row := c.svc.QueryRowContext(ctx, "SELECT AI_FILTER(PROMPT(?, ?))", template, text)
	if err := row.Scan(&result); err != nil {
		return false, errors.CortexError("AI_FILTER", err)
	}
	return result.Valid && result.Bool, nil
}

// Summarize produces a summary of the text
func (c *Service) Summarize(ctx context.Context, text string) (string, error) {
	out, err := c.queryString(ctx, "SELECT SNOWFLAKE.CORTEX.SUMMARIZE(?)", text)
	if err != nil {
		return "", errors.CortexError("SUMMARIZE", err)
	}
	return strings.TrimSpace(out), nil
}

// Similarity scores how semantically close two texts are
func (c *Service) Similarity(ctx context.Context, a, b string) (float64, error) {
	var score sql.NullFloat64
	row := c.svc.QueryRowContext(ctx, "SELECT AI_SIMILARITY(?, ?)", a, b)
	if err := row.Scan(&score); err != nil {
		return 0, errors.CortexError("AI_SIMILARITY", err)
	}
	if !score.Valid {
		return 0, errors.New(errors.ErrCodeCortexParse, "AI_SIMILARITY returned NULL")
	}
	return score.Float64, nil
}

// Complete runs the configured completion model over a prompt
func (c *Service) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := c.queryString(ctx, "SELECT SNOWFLAKE.CORTEX.COMPLETE(?, ?)", c.model, prompt)
	if err != nil {
		return "", errors.CortexError("COMPLETE", err).WithContext("model", c.model)
	}
	return strings.TrimSpace(out), nil
}

func (c *Service) queryString(ctx context.Context, query string, args ...interface{}) (string, error) {
	var out string
	err := errors.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var value sql.NullString
		row := c.svc.QueryRowContext(ctx, query, args...)
		if err := row.Scan(&value); err != nil {
			return err
		}
		if !value.Valid {
			return errors.New(errors.ErrCodeNoResults, "Cortex function returned NULL")
		}
		out = value.String
		return nil
	})
	return out, err
}
