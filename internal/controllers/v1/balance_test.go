package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/schoolbudget/backend/internal/controllers/v1"
	"github.com/schoolbudget/backend/internal/models"
	"github.com/schoolbudget/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestProjectBalance() {
	project := createTestProject(suite.T(), v1.ProjectEditable{Name: "Chemistry fair"})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:   project.Data.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(10000),
	})
	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		ProjectID:   project.Data.ID,
		CategoryKey: "SUPPLIES",
		Kind:        models.KindExpense,
		Amount:      decimal.NewFromFloat(3000),
	})

	r := test.Request(suite.T(), http.MethodGet, project.Data.Links.Balance, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ProjectBalanceResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Require().NotNil(response.Data)
	suite.Assert().True(response.Data.TotalAllocated.Equal(decimal.NewFromFloat(10000)))
	suite.Assert().True(response.Data.TotalSpent.Equal(decimal.NewFromFloat(3000)))
	suite.Assert().True(response.Data.Remaining.Equal(decimal.NewFromFloat(7000)))
}

func (suite *TestSuiteStandard) TestProjectBalanceNotFound() {
	r := test.Request(suite.T(), http.MethodGet, "/v1/projects/d430d7c3-d14c-4712-9336-ee56965a6673/balance", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestProjectCategoryBalances() {
	project := createTestProject(suite.T(), v1.ProjectEditable{Name: "Chemistry fair"})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:   project.Data.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(100),
	})

	// Activity without an allocation row
	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		ProjectID:   project.Data.ID,
		CategoryKey: "UNPLANNED",
		Kind:        models.KindExpense,
		Amount:      decimal.NewFromFloat(30),
	})

	r := test.Request(suite.T(), http.MethodGet, project.Data.Links.Categories, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryBalanceListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal("SUPPLIES", response.Data[0].CategoryKey)
	suite.Assert().Equal("UNPLANNED", response.Data[1].CategoryKey)
	suite.Assert().True(response.Data[1].Remaining.Equal(decimal.NewFromFloat(-30)))
}

func (suite *TestSuiteStandard) TestCategoryBalance() {
	project := createTestProject(suite.T(), v1.ProjectEditable{Name: "Chemistry fair"})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:   project.Data.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(100),
	})

	// The key is normalized from the URL parameter
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/projects/%s/categories/supplies/balance", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryBalanceResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Require().NotNil(response.Data)
	suite.Assert().Equal("SUPPLIES", response.Data.CategoryKey)
	suite.Assert().True(response.Data.Allocated.Equal(decimal.NewFromFloat(100)))

	// A category that never appeared returns a zero-valued balance
	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/projects/%s/categories/NEVER_USED/balance", project.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().True(response.Data.Remaining.IsZero())
}
