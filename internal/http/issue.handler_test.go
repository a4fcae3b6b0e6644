package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/datasteward/dqtracker/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIssueValidationAccumulatesErrors(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/issues", map[string]interface{}{
		"description": "   ",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])

	errs, ok := body["errors"].([]interface{})
	require.True(t, ok, "expected errors list, got %v", body)
	assert.ElementsMatch(t, []interface{}{
		"dataset_name is required",
		"description is required",
		"owner is required",
		"issue_type is required",
	}, errs)
}

func TestCreateIssueDefaults(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/issues", map[string]interface{}{
		"dataset_name": "orders",
		"description":  "missing order totals",
		"owner":        "finance",
		"issue_type":   "missing_values",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	body := decodeBody(t, recorder)
	data := body["data"].(map[string]interface{})

	assert.Equal(t, "open", data["status"])
	assert.Equal(t, env.user.ID.String(), data["created_by"])
	assert.Nil(t, data["accuracy_score"])
	assert.Nil(t, data["completeness_score"])
	assert.Nil(t, data["timeliness_score"])
	assert.Nil(t, data["category_id"])
	assert.Nil(t, data["severity_id"])
}

func TestCreateIssueZeroScorePersistsNull(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/issues", map[string]interface{}{
		"dataset_name":   "orders",
		"description":    "zero score treated as absent",
		"owner":          "finance",
		"issue_type":     "missing_values",
		"accuracy_score": 0,
		"severity_id":    uuid.Nil.String(),
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	data := decodeBody(t, recorder)["data"].(map[string]interface{})
	assert.Nil(t, data["accuracy_score"])
	assert.Nil(t, data["severity_id"])
}

func TestCreateIssueWithScoresAndLookups(t *testing.T) {
	env := newTestEnv(t)

	var category entity.Category
	require.NoError(t, env.ctx.DB.First(&category, "name = ?", "Accuracy").Error)
	var severity entity.Severity
	require.NoError(t, env.ctx.DB.First(&severity, "name = ?", "High").Error)

	recorder := env.do(t, http.MethodPost, "/api/issues", map[string]interface{}{
		"dataset_name":       "orders",
		"description":        "stale exchange rates",
		"owner":              "finance",
		"issue_type":         "stale_data",
		"category_id":        category.ID.String(),
		"severity_id":        severity.ID.String(),
		"accuracy_score":     2,
		"completeness_score": 5,
		"timeliness_score":   1,
		"status":             "in_progress",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	data := decodeBody(t, recorder)["data"].(map[string]interface{})
	assert.Equal(t, "in_progress", data["status"])
	assert.Equal(t, float64(2), data["accuracy_score"])

	joined := data["category"].(map[string]interface{})
	assert.Equal(t, "Accuracy", joined["name"])

	sev := data["severity"].(map[string]interface{})
	assert.Equal(t, "High", sev["name"])
	assert.Equal(t, float64(3), sev["level"])
	assert.NotEmpty(t, sev["color"])
}

func TestCreateIssueRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/issues", map[string]interface{}{
		"dataset_name": "orders",
		"description":  "bad status value",
		"owner":        "finance",
		"issue_type":   "missing_values",
		"status":       "bogus_status",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code, recorder.Body.String())

	errs := decodeBody(t, recorder)["errors"].([]interface{})
	assert.Contains(t, errs, "status must be one of: open, in_progress, resolved, closed")

	var count int64
	env.ctx.DB.Model(&entity.Issue{}).Count(&count)
	assert.Equal(t, int64(0), count, "rejected issue must not persist")
}

func TestCreateIssueAcceptsEveryKnownStatus(t *testing.T) {
	env := newTestEnv(t)

	for _, status := range []string{entity.StatusOpen, entity.StatusInProgress, entity.StatusResolved, entity.StatusClosed} {
		recorder := env.do(t, http.MethodPost, "/api/issues", map[string]interface{}{
			"dataset_name": "orders",
			"description":  "d",
			"owner":        "o",
			"issue_type":   "t",
			"status":       status,
		})
		require.Equal(t, http.StatusCreated, recorder.Code, "status %q: %s", status, recorder.Body.String())

		data := decodeBody(t, recorder)["data"].(map[string]interface{})
		assert.Equal(t, status, data["status"])
	}
}

func TestUpdateIssueRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	issue := env.seedIssue(t, entity.Issue{DatasetName: "orders", Description: "d", Owner: "o", IssueType: "t"})

	recorder := env.do(t, http.MethodPut, "/api/issues/"+issue.ID.String(), map[string]interface{}{
		"status": "bogus_status",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code, recorder.Body.String())
	assert.Equal(t, "status must be one of: open, in_progress, resolved, closed", decodeBody(t, recorder)["message"])

	var stored entity.Issue
	require.NoError(t, env.ctx.DB.First(&stored, "id = ?", issue.ID).Error)
	assert.Equal(t, entity.StatusOpen, stored.Status, "stored status unchanged")

	// Non-string status values are rejected the same way.
	recorder = env.do(t, http.MethodPut, "/api/issues/"+issue.ID.String(), map[string]interface{}{
		"status": 7,
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestListIssuesPagination(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 25; i++ {
		env.seedIssue(t, entity.Issue{
			DatasetName: fmt.Sprintf("dataset-%02d", i),
			Description: "seeded",
			Owner:       "steward",
			IssueType:   "duplicate_rows",
		})
	}

	recorder := env.do(t, http.MethodGet, "/api/issues?sort=dataset_name&order=asc&limit=10&page=2", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	data := body["data"].([]interface{})
	require.Len(t, data, 10)

	first := data[0].(map[string]interface{})
	last := data[9].(map[string]interface{})
	assert.Equal(t, "dataset-10", first["dataset_name"])
	assert.Equal(t, "dataset-19", last["dataset_name"])

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(10), pagination["limit"])
	assert.Equal(t, float64(25), pagination["total"])
	assert.Equal(t, float64(3), pagination["totalPages"])
}

func TestListIssuesFiltersAreConjunctive(t *testing.T) {
	env := newTestEnv(t)

	env.seedIssue(t, entity.Issue{DatasetName: "customer_master", Description: "a", Owner: "crm", IssueType: "t", Status: entity.StatusOpen})
	env.seedIssue(t, entity.Issue{DatasetName: "customer_master", Description: "b", Owner: "crm", IssueType: "t", Status: entity.StatusResolved})
	env.seedIssue(t, entity.Issue{DatasetName: "billing", Description: "c", Owner: "crm", IssueType: "t", Status: entity.StatusOpen})

	recorder := env.do(t, http.MethodGet, "/api/issues?dataset=customer&status=open", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)

	row := data[0].(map[string]interface{})
	assert.Equal(t, "customer_master", row["dataset_name"])
	assert.Equal(t, "open", row["status"])
}

func TestListIssuesFilterByLookupIDs(t *testing.T) {
	env := newTestEnv(t)

	var category entity.Category
	require.NoError(t, env.ctx.DB.First(&category, "name = ?", "Validity").Error)
	var severity entity.Severity
	require.NoError(t, env.ctx.DB.First(&severity, "name = ?", "Critical").Error)

	env.seedIssue(t, entity.Issue{DatasetName: "a", Description: "d", Owner: "o", IssueType: "t", CategoryID: &category.ID, SeverityID: &severity.ID})
	env.seedIssue(t, entity.Issue{DatasetName: "b", Description: "d", Owner: "o", IssueType: "t", CategoryID: &category.ID})
	env.seedIssue(t, entity.Issue{DatasetName: "c", Description: "d", Owner: "o", IssueType: "t"})

	recorder := env.do(t, http.MethodGet, "/api/issues?category="+category.ID.String()+"&severity="+severity.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	data := decodeBody(t, recorder)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "a", data[0].(map[string]interface{})["dataset_name"])
}

func TestListIssuesUnknownSortFallsBack(t *testing.T) {
	env := newTestEnv(t)
	env.seedIssue(t, entity.Issue{DatasetName: "a", Description: "d", Owner: "o", IssueType: "t"})

	recorder := env.do(t, http.MethodGet, "/api/issues?sort=password_hash;DROP", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestGetIssueNotFound(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/api/issues/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Issue not found", body["message"])
}

func TestUpdateIssueStripsImmutableFields(t *testing.T) {
	env := newTestEnv(t)

	issue := env.seedIssue(t, entity.Issue{DatasetName: "orders", Description: "original", Owner: "o", IssueType: "t"})

	recorder := env.do(t, http.MethodPut, "/api/issues/"+issue.ID.String(), map[string]interface{}{
		"id":          uuid.NewString(),
		"created_by":  uuid.NewString(),
		"created_at":  "1999-01-01T00:00:00Z",
		"description": "updated description",
		"status":      "resolved",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	data := decodeBody(t, recorder)["data"].(map[string]interface{})
	assert.Equal(t, issue.ID.String(), data["id"])
	assert.Equal(t, env.user.ID.String(), data["created_by"])
	assert.Equal(t, "updated description", data["description"])
	assert.Equal(t, "resolved", data["status"])

	var stored entity.Issue
	require.NoError(t, env.ctx.DB.First(&stored, "id = ?", issue.ID).Error)
	assert.Equal(t, env.user.ID, stored.CreatedBy)
	assert.WithinDuration(t, issue.CreatedAt, stored.CreatedAt, time.Second)
}

func TestUpdateIssueNotFound(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPut, "/api/issues/"+uuid.NewString(), map[string]interface{}{
		"description": "updated",
	})
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDeleteIssue(t *testing.T) {
	env := newTestEnv(t)

	issue := env.seedIssue(t, entity.Issue{DatasetName: "orders", Description: "d", Owner: "o", IssueType: "t"})

	recorder := env.do(t, http.MethodDelete, "/api/issues/"+issue.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var count int64
	env.ctx.DB.Model(&entity.Issue{}).Where("id = ?", issue.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteIssueZeroRowsIsSuccess(t *testing.T) {
	env := newTestEnv(t)

	// GORM reports no error for a delete matching nothing, so the
	// endpoint treats it as success.
	recorder := env.do(t, http.MethodDelete, "/api/issues/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, decodeBody(t, recorder)["success"])
}

func TestIssueRoutesRequireAuthentication(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/issues"},
		{http.MethodGet, "/api/issues/" + uuid.NewString()},
		{http.MethodPost, "/api/issues"},
		{http.MethodPut, "/api/issues/" + uuid.NewString()},
		{http.MethodDelete, "/api/issues/" + uuid.NewString()},
		{http.MethodGet, "/api/dashboard/stats"},
		{http.MethodGet, "/api/export/csv"},
		{http.MethodGet, "/api/categories"},
		{http.MethodGet, "/api/severity-levels"},
	}

	for _, route := range paths {
		recorder := env.doWithToken(t, route.method, route.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "%s %s", route.method, route.path)
	}

	recorder := env.doWithToken(t, http.MethodGet, "/api/issues", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestUnmatchedRouteReturnsEnvelope(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Route not found", body["message"])
}
