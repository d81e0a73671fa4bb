package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/schoolbudget/backend/internal/controllers/v1"
	"github.com/schoolbudget/backend/internal/models"
	"github.com/schoolbudget/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestProjectsOptions() {
	tests := []struct {
		name     string        // Name for the test
		status   int           // Expected HTTP status
		id       string        // String to use as ID. Ignored when pathFunc is non-nil
		pathFunc func() string // Function returning the path
	}{
		{
			"Does not exist",
			http.StatusNotFound,
			"d430d7c3-d14c-4712-9336-ee56965a6673",
			nil,
		},
		{
			"Invalid UUID",
			http.StatusBadRequest,
			"NotParseableAsUUID",
			nil,
		},
		{
			"Success",
			http.StatusNoContent,
			"",
			func() string {
				return createTestProject(suite.T(), v1.ProjectEditable{Name: "Options"}).Data.Links.Self
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var p string
			if tt.pathFunc != nil {
				p = tt.pathFunc()
			} else {
				p = fmt.Sprintf("/v1/projects/%s", tt.id)
			}

			r := test.Request(t, http.MethodOptions, p, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "OPTIONS, GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestProjectsCreate() {
	response := createTestProject(suite.T(), v1.ProjectEditable{
		Name:       "Chemistry fair",
		WorkGroup:  "science",
		FiscalYear: 2026,
	})

	suite.Assert().Equal("Chemistry fair", response.Data.Name)
	suite.Assert().Equal(models.ProjectStatusActive, response.Data.Status, "The status has to default to active")
	suite.Assert().NotEmpty(response.Data.Links.Self)
}

func (suite *TestSuiteStandard) TestProjectsCreateInvalidStatus() {
	r := test.Request(suite.T(), http.MethodPost, "/v1/projects", []v1.ProjectEditable{
		{Name: "Broken", Status: "archived"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestProjectsCreateInvalidBody() {
	r := test.Request(suite.T(), http.MethodPost, "/v1/projects", `{ "name": "not an array" }`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestProjectsGetFilter() {
	_ = createTestProject(suite.T(), v1.ProjectEditable{Name: "Chemistry fair", WorkGroup: "science", FiscalYear: 2026})
	_ = createTestProject(suite.T(), v1.ProjectEditable{Name: "Physics fair", WorkGroup: "science", FiscalYear: 2025})
	_ = createTestProject(suite.T(), v1.ProjectEditable{Name: "Reading week", WorkGroup: "library", FiscalYear: 2026})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"All", "", 3},
		{"Work group", "workGroup=science", 2},
		{"Fiscal year", "fiscalYear=2026", 2},
		{"Work group and fiscal year", "workGroup=science&fiscalYear=2026", 1},
		{"Status", "status=active", 3},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/projects?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.ProjectListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestProjectsUpdate() {
	project := createTestProject(suite.T(), v1.ProjectEditable{Name: "Initial name"})

	r := test.Request(suite.T(), http.MethodPatch, project.Data.Links.Self, map[string]any{
		"name": "Updated name",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ProjectResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("Updated name", response.Data.Name)
}

func (suite *TestSuiteStandard) TestProjectsUpdateImmutable() {
	project := createTestProject(suite.T(), v1.ProjectEditable{Name: "Referenced"})
	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		ProjectID: project.Data.ID,
		Amount:    decimal.NewFromFloat(10),
	})

	r := test.Request(suite.T(), http.MethodPatch, project.Data.Links.Self, map[string]any{
		"name": "New name",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	// The status transition stays permitted
	r = test.Request(suite.T(), http.MethodPatch, project.Data.Links.Self, map[string]any{
		"status": "completed",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestProjectsDelete() {
	project := createTestProject(suite.T(), v1.ProjectEditable{Name: "Short-lived"})

	r := test.Request(suite.T(), http.MethodDelete, project.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, project.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestProjectsGetNotFound() {
	r := test.Request(suite.T(), http.MethodGet, "/v1/projects/d430d7c3-d14c-4712-9336-ee56965a6673", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
