package v1_test

import (
	"net/http"

	v1 "github.com/schoolbudget/backend/internal/controllers/v1"
	"github.com/schoolbudget/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTransfersOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "/v1/transfers", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	suite.Assert().Equal("OPTIONS, POST", r.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestTransfersCreate() {
	source := createTestProject(suite.T(), v1.ProjectEditable{Name: "Chemistry fair"})
	destination := createTestProject(suite.T(), v1.ProjectEditable{Name: "Physics fair"})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:   source.Data.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(10000),
	})

	r := test.Request(suite.T(), http.MethodPost, "/v1/transfers", v1.TransferEditable{
		FromProjectID:   source.Data.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     destination.Data.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(2000),
		Note:            "Shared bus rental",
		ActorID:         "jdoe",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.TransferResponse
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(response.Data.PairID, *response.Data.Outgoing.PairID)
	suite.Assert().Equal(response.Data.PairID, *response.Data.Incoming.PairID)

	// The destination category did not exist and has been created
	suite.Require().NotNil(response.Data.CreatedAllocation)
	suite.Assert().True(response.Data.CreatedAllocation.AutoCreated)
	suite.Assert().True(response.Data.CreatedAllocation.Amount.IsZero())
}

func (suite *TestSuiteStandard) TestTransfersInsufficientBalance() {
	source := createTestProject(suite.T(), v1.ProjectEditable{Name: "Chemistry fair"})
	destination := createTestProject(suite.T(), v1.ProjectEditable{Name: "Physics fair"})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:   source.Data.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(100),
	})

	r := test.Request(suite.T(), http.MethodPost, "/v1/transfers", v1.TransferEditable{
		FromProjectID:   source.Data.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     destination.Data.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(200),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.TransferResponse
	test.DecodeResponse(suite.T(), &r, &response)

	// The error reports the available balance
	suite.Require().NotNil(response.Error)
	suite.Assert().Contains(*response.Error, "100 is available")

	// Nothing has been written
	r = test.Request(suite.T(), http.MethodGet, "/v1/transactions", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var transactions v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &transactions)
	suite.Assert().Empty(transactions.Data)
}

func (suite *TestSuiteStandard) TestTransfersValidation() {
	source := createTestProject(suite.T(), v1.ProjectEditable{Name: "Chemistry fair"})
	destination := createTestProject(suite.T(), v1.ProjectEditable{Name: "Physics fair"})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{
		ProjectID:   source.Data.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(100),
	})

	// Transfers within one project are rejected
	r := test.Request(suite.T(), http.MethodPost, "/v1/transfers", v1.TransferEditable{
		FromProjectID:   source.Data.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     source.Data.ID,
		ToCategoryKey:   "TRAVEL",
		Amount:          decimal.NewFromFloat(10),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	// A source category that never had an allocation has a balance of 0
	r = test.Request(suite.T(), http.MethodPost, "/v1/transfers", v1.TransferEditable{
		FromProjectID:   destination.Data.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     source.Data.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(500),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
