package cortex

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callsight/internal/snowflake"
	"callsight/pkg/errors"
)

func newMockCortex(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := snowflake.NewService(snowflake.Config{})
	svc.SetDB(db)
	return NewService(svc, "mistral-large"), mock
}

func TestClassify(t *testing.T) {
	cortex, mock := newMockCortex(t)

	mock.ExpectQuery(`SELECT SNOWFLAKE\.CORTEX\.CLASSIFY_TEXT\(\?, ARRAY_CONSTRUCT\(\?, \?\)\)`).
		WithArgs("we should renew the contract", "renewal", "churn risk").
		WillReturnRows(sqlmock.NewRows([]string{"out"}).AddRow(`{"label": "renewal"}`))

	label, err := cortex.Classify(context.Background(),
		"we should renew the contract", []string{"renewal", "churn risk"})
	require.NoError(t, err)
	assert.Equal(t, "renewal", label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassifyRequiresCategories(t *testing.T) {
	cortex, _ := newMockCortex(t)

	_, err := cortex.Classify(context.Background(), "some text", nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetErrorCode(err))
}

func TestClassifyRejectsMalformedResponse(t *testing.T) {
	cortex, mock := newMockCortex(t)

	mock.ExpectQuery(`CLASSIFY_TEXT`).
		WillReturnRows(sqlmock.NewRows([]string{"out"}).AddRow("not json"))

	_, err := cortex.Classify(context.Background(), "text", []string{"a"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCortexParse, errors.GetErrorCode(err))
}

func TestFilter(t *testing.T) {
	cortex, mock := newMockCortex(t)

	mock.ExpectQuery(`SELECT AI_FILTER\(PROMPT\(\?, \?\)\)`).
		WithArgs("Did the customer mention pricing?\n\n{0}", "the transcript").
		WillReturnRows(sqlmock.NewRows([]string{"out"}).AddRow(true))

	ok, err := cortex.Filter(context.Background(), "the transcript", "Did the customer mention pricing?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterTreatsNullAsFalse(t *testing.T) {
	cortex, mock := newMockCortex(t)

	mock.ExpectQuery(`AI_FILTER`).
		WillReturnRows(sqlmock.NewRows([]string{"out"}).AddRow(nil))

	ok, err := cortex.Filter(context.Background(), "text", "predicate")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummarizeTrimsWhitespace(t *testing.T) {
	cortex, mock := newMockCortex(t)

	mock.ExpectQuery(`SELECT SNOWFLAKE\.CORTEX\.SUMMARIZE\(\?\)`).
		WithArgs("long transcript").
		WillReturnRows(sqlmock.NewRows([]string{"out"}).AddRow("  A short summary.\n"))

	out, err := cortex.Summarize(context.Background(), "long transcript")
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", out)
}

func TestSimilarity(t *testing.T) {
	cortex, mock := newMockCortex(t)

	mock.ExpectQuery(`SELECT AI_SIMILARITY\(\?, \?\)`).
		WithArgs("first call", "second call").
		WillReturnRows(sqlmock.NewRows([]string{"out"}).AddRow(0.87))

	score, err := cortex.Similarity(context.Background(), "first call", "second call")
	require.NoError(t, err)
	assert.InDelta(t, 0.87, score, 0.0001)
}

func TestSimilarityRejectsNull(t *testing.T) {
	cortex, mock := newMockCortex(t)

	mock.ExpectQuery(`AI_SIMILARITY`).
		WillReturnRows(sqlmock.NewRows([]string{"out"}).AddRow(nil))

	_, err := cortex.Similarity(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCortexParse, errors.GetErrorCode(err))
}

func TestCompleteUsesConfiguredModel(t *testing.T) {
	cortex, mock := newMockCortex(t)

	mock.ExpectQuery(`SELECT SNOWFLAKE\.CORTEX\.COMPLETE\(\?, \?\)`).
		WithArgs("mistral-large", "What were the action items?").
		WillReturnRows(sqlmock.NewRows([]string{"out"}).AddRow("Follow up next week."))

	out, err := cortex.Complete(context.Background(), "What were the action items?")
	require.NoError(t, err)
	assert.Equal(t, "Follow up next week.", out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch(t *testing.T) {
	cortex, mock := newMockCortex(t)

	mock.ExpectQuery(`SELECT SNOWFLAKE\.CORTEX\.SEARCH_PREVIEW\(\?, \?\)`).
		WithArgs("SALES_CALLS.PUBLIC.CALL_SEARCH",
			`{"query":"pricing AND renewal","columns":["CALL_ID","TRANSCRIPT"],"limit":5}`).
		WillReturnRows(sqlmock.NewRows([]string{"out"}).
			AddRow(`{"results": [{"CALL_ID": "call-1", "TRANSCRIPT": "..."}]}`))

	hits, err := cortex.Search(context.Background(), SearchRequest{
		Service: "SALES_CALLS.PUBLIC.CALL_SEARCH",
		Query:   "pricing AND renewal",
		Columns: []string{"CALL_ID", "TRANSCRIPT"},
		Limit:   5,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "call-1", hits[0]["CALL_ID"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	cortex, _ := newMockCortex(t)

	_, err := cortex.Search(context.Background(), SearchRequest{Service: "DB.SCHEMA.SVC"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetErrorCode(err))
}

func TestSearchRejectsBadServiceName(t *testing.T) {
	cortex, _ := newMockCortex(t)

	_, err := cortex.Search(context.Background(), SearchRequest{
		Service: "DB.SCHEMA.SVC; DROP TABLE X",
		Query:   "anything",
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidIdentifier, errors.GetErrorCode(err))
}
