package v1_test

import (
	"fmt"
	"net/http"
	"strings"

	v1 "github.com/schoolbudget/backend/internal/controllers/v1"
	"github.com/schoolbudget/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestImportOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "/v1/import", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	suite.Assert().Equal("OPTIONS, POST", r.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestImport() {
	project := createTestProject(suite.T(), v1.ProjectEditable{Name: "Chemistry fair"})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:   project.Data.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(1000),
	})

	file := strings.Join([]string{
		"kind,project_id,category,to_project_id,to_category,date,amount,description,reference",
		fmt.Sprintf("expense,%s,SUPPLIES,,,2026-08-10,14.03,Poster paint,INV-2026-0117", project.Data.ID),
		fmt.Sprintf("expense,%s,SUPPLIES,,,2026-08-10,14.03,Poster paint,INV-2026-0117", project.Data.ID),
		fmt.Sprintf("expense,%s,UNKNOWN,,,2026-08-11,5,No such category,", project.Data.ID),
	}, "\n")

	body, headers := test.BatchFile(suite.T(), "batch.csv", file)
	r := test.Request(suite.T(), http.MethodPost, "/v1/import?actor=jdoe", body, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ImportResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Require().NotNil(response.Data)
	suite.Assert().Len(response.Data.Imported, 1)
	suite.Assert().Len(response.Data.SkippedDuplicates, 1)
	suite.Assert().Len(response.Data.Errors, 1)
	suite.Assert().Equal("jdoe", response.Data.Imported[0].ActorID)
}

func (suite *TestSuiteStandard) TestImportErrors() {
	csvBody, csvHeaders := test.BatchFile(suite.T(), "batch.csv", "kind,project_id,category,to_project_id,to_category,date,amount,description,reference\n")
	wrongSuffixBody, wrongSuffixHeaders := test.BatchFile(suite.T(), "batch.xlsx", "not a csv")

	tests := []struct {
		name    string
		path    string
		body    string
		status  int
		headers map[string]string
	}{
		{"No actor", "/v1/import", "", http.StatusBadRequest, csvHeaders},
		{"No file", "/v1/import?actor=jdoe", "", http.StatusBadRequest, nil},
		{"Wrong suffix", "/v1/import?actor=jdoe", wrongSuffixBody.String(), http.StatusBadRequest, wrongSuffixHeaders},
		{"Header only file", "/v1/import?actor=jdoe", csvBody.String(), http.StatusOK, csvHeaders},
	}

	for _, tt := range tests {
		r := test.Request(suite.T(), http.MethodPost, tt.path, tt.body, tt.headers)
		test.AssertHTTPStatus(suite.T(), &r, tt.status)
	}
}
