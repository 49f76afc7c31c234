package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPeriodReturnsUpdatedPrediction(t *testing.T) {
	env := newTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/periods", `{"start":"2024-01-01","end":"2024-01-05"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	stats := decodeJSON[statisticsResponse](t, resp)
	assert.Equal(t, 5, stats.AveragePeriodLength)
	assert.Equal(t, 28, stats.AverageCycleLength)
	assert.Equal(t, "2024-01-29", stats.NextPeriodStart.String())
	assert.Equal(t, "2024-01-15", stats.OvulationDay.String())
	assert.Equal(t, "2024-01-10", stats.FertileWindowStart.String())
	assert.Equal(t, "2024-01-16", stats.FertileWindowEnd.String())
	assert.True(t, stats.HasPrediction)

	resp = env.request(t, http.MethodPost, "/api/periods", `{"start":"2024-01-31","end":"2024-02-04"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	stats = decodeJSON[statisticsResponse](t, resp)
	assert.Equal(t, 30, stats.AverageCycleLength)
	assert.Equal(t, "2024-03-01", stats.NextPeriodStart.String())

	resp = env.request(t, http.MethodGet, "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stored := decodeJSON[statisticsResponse](t, resp)
	assert.Equal(t, stats, stored)
}

func TestListPeriodsReturnsHistoryInOrder(t *testing.T) {
	env := newTestApp(t)
	env.recordTwoPeriods(t)

	resp := env.request(t, http.MethodGet, "/api/periods", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	periods := decodeJSON[[]periodResponse](t, resp)
	require.Len(t, periods, 2)
	assert.Equal(t, "2024-01-01", periods[0].Start.String())
	assert.Equal(t, "2024-01-05", periods[0].End.String())
	assert.Equal(t, 5, periods[0].Length)
	assert.Equal(t, "2024-01-29", periods[1].Start.String())
}

func TestRecordPeriodRejectsInvalidInput(t *testing.T) {
	env := newTestApp(t)
	env.recordTwoPeriods(t)

	testCases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{
			name:    "end before start",
			body:    `{"start":"2024-03-05","end":"2024-03-01"}`,
			status:  http.StatusBadRequest,
			message: "Period end date must not be before its start date",
		},
		{
			name:    "start inside recorded period",
			body:    `{"start":"2024-01-30","end":"2024-02-03"}`,
			status:  http.StatusConflict,
			message: "Period already recorded",
		},
		{
			name:    "start before latest period",
			body:    `{"start":"2024-01-20","end":"2024-01-22"}`,
			status:  http.StatusConflict,
			message: "Period must start after the latest recorded period",
		},
		{
			name:    "prediction past year 9999",
			body:    `{"start":"9999-12-20","end":"9999-12-22"}`,
			status:  http.StatusBadRequest,
			message: "Dates must fall between years 0001 and 9999",
		},
		{
			name:    "malformed day",
			body:    `{"start":"2024-02-30","end":"2024-03-02"}`,
			status:  http.StatusBadRequest,
			message: "Invalid input",
		},
		{
			name:    "missing end",
			body:    `{"start":"2024-03-01"}`,
			status:  http.StatusBadRequest,
			message: "Invalid input",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			resp := env.request(t, http.MethodPost, "/api/periods", testCase.body, nil)
			require.Equal(t, testCase.status, resp.StatusCode)

			payload := decodeJSON[map[string]string](t, resp)
			assert.Equal(t, testCase.message, payload["error"])
		})
	}

	resp := env.request(t, http.MethodGet, "/api/periods", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeJSON[[]periodResponse](t, resp), 2, "rejected periods must not be stored")
}

func TestRecordPeriodLateInYear9999ReadsBack(t *testing.T) {
	env := newTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/periods", `{"start":"9999-12-20","end":"9999-12-22"}`, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/periods", `{"start":"9999-11-01","end":"9999-11-04"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	recorded := decodeJSON[statisticsResponse](t, resp)
	assert.Equal(t, "9999-11-29", recorded.NextPeriodStart.String())

	resp = env.request(t, http.MethodGet, "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, recorded, decodeJSON[statisticsResponse](t, resp))

	resp = env.request(t, http.MethodGet, "/api/status?date=9999-12-31", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClearPeriodsKeepsSettings(t *testing.T) {
	env := newTestApp(t)
	env.recordTwoPeriods(t)

	resp := env.request(t, http.MethodPost, "/api/settings", `{"display_name":"Mia"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodDelete, "/api/periods", "", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/periods", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeJSON[[]periodResponse](t, resp))

	resp = env.request(t, http.MethodGet, "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeJSON[statisticsResponse](t, resp)
	assert.False(t, stats.HasPrediction)
	assert.True(t, stats.NextPeriodStart.IsZero())

	resp = env.request(t, http.MethodGet, "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mia", decodeJSON[settingsResponse](t, resp).DisplayName)
}
