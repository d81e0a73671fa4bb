package models_test

import (
	"errors"

	"github.com/schoolbudget/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (suite *TestSuiteStandard) TestTransfer() {
	source := suite.createTestProject(models.Project{Name: "Chemistry fair"})
	destination := suite.createTestProject(models.Project{Name: "Physics fair"})

	suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   source.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(10000),
	})
	suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   destination.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(1000),
	})

	result, err := models.Transfer(models.DB, models.TransferRequest{
		FromProjectID:   source.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     destination.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(2000),
		Note:            "Shared bus rental",
		ActorID:         "jdoe",
	})
	suite.Require().NoError(err)

	suite.Assert().Equal(models.KindTransferOut, result.Outgoing.Kind)
	suite.Assert().Equal(models.KindTransferIn, result.Incoming.Kind)
	suite.Assert().Nil(result.CreatedAllocation, "No allocation may be created when the destination category exists")

	// Both legs share the pair ID and reference each other
	suite.Require().NotNil(result.Outgoing.PairID)
	suite.Require().NotNil(result.Incoming.PairID)
	suite.Assert().Equal(result.PairID, *result.Outgoing.PairID)
	suite.Assert().Equal(result.PairID, *result.Incoming.PairID)
	suite.Assert().Equal(source.ID, *result.Incoming.CounterpartyProjectID)
	suite.Assert().Equal(destination.ID, *result.Outgoing.CounterpartyProjectID)

	// The total amount across both projects is unchanged
	sourceBalance, err := models.GetCategoryBalance(models.DB, source.ID, "SUPPLIES")
	suite.Require().NoError(err)
	destinationBalance, err := models.GetCategoryBalance(models.DB, destination.ID, "SUPPLIES")
	suite.Require().NoError(err)

	suite.Assert().True(sourceBalance.Remaining.Equal(decimal.NewFromFloat(8000)), "Source remaining is %s", sourceBalance.Remaining)
	suite.Assert().True(destinationBalance.Remaining.Equal(decimal.NewFromFloat(3000)), "Destination remaining is %s", destinationBalance.Remaining)
}

func (suite *TestSuiteStandard) TestTransferCreatesCategory() {
	source := suite.createTestProject(models.Project{Name: "Chemistry fair"})
	destination := suite.createTestProject(models.Project{Name: "Physics fair"})

	suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   source.ID,
		CategoryKey: "SUPPLIES",
		Label:       "Verbrauchsmaterial",
		Amount:      decimal.NewFromFloat(100),
	})

	result, err := models.Transfer(models.DB, models.TransferRequest{
		FromProjectID:   source.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     destination.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(25),
	})
	suite.Require().NoError(err)

	suite.Require().NotNil(result.CreatedAllocation)
	suite.Assert().True(result.CreatedAllocation.Amount.IsZero(), "Implicitly created categories start with an allocation of 0")
	suite.Assert().True(result.CreatedAllocation.AutoCreated)
	suite.Assert().Equal("Verbrauchsmaterial", result.CreatedAllocation.Label, "The label has to be copied from the source allocation")

	balance, err := models.GetCategoryBalance(models.DB, destination.ID, "SUPPLIES")
	suite.Require().NoError(err)
	suite.Assert().True(balance.Remaining.Equal(decimal.NewFromFloat(25)))
}

func (suite *TestSuiteStandard) TestTransferInsufficientBalance() {
	source := suite.createTestProject(models.Project{Name: "Source"})
	destination := suite.createTestProject(models.Project{Name: "Destination"})

	suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   source.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(100),
	})
	suite.createTestTransaction(models.Transaction{
		ProjectID:   source.ID,
		CategoryKey: "SUPPLIES",
		Kind:        models.KindExpense,
		Amount:      decimal.NewFromFloat(80),
	})

	_, err := models.Transfer(models.DB, models.TransferRequest{
		FromProjectID:   source.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     destination.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(21),
	})
	suite.Assert().ErrorIs(err, models.ErrInsufficientBalance)

	// The error carries the remaining balance
	var insufficient models.InsufficientBalanceError
	suite.Require().ErrorAs(err, &insufficient)
	suite.Assert().True(insufficient.Remaining.Equal(decimal.NewFromFloat(20)), "Remaining in error is %s", insufficient.Remaining)

	// A rejected transfer writes nothing
	var count int64
	suite.Require().NoError(models.DB.Model(&models.Transaction{}).Where("kind IN ?", []models.TransactionKind{models.KindTransferOut, models.KindTransferIn}).Count(&count).Error)
	suite.Assert().Equal(int64(0), count)

	// The exact remaining amount can be transferred
	_, err = models.Transfer(models.DB, models.TransferRequest{
		FromProjectID:   source.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     destination.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(20),
	})
	suite.Assert().NoError(err)
}

func (suite *TestSuiteStandard) TestTransferValidation() {
	source := suite.createTestProject(models.Project{Name: "Source"})
	destination := suite.createTestProject(models.Project{Name: "Destination"})

	suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   source.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(100),
	})

	request := models.TransferRequest{
		FromProjectID:   source.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     destination.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(10),
	}

	zeroAmount := request
	zeroAmount.Amount = decimal.Zero
	_, err := models.Transfer(models.DB, zeroAmount)
	suite.Assert().ErrorIs(err, models.ErrAmountNotPositive)

	negativeAmount := request
	negativeAmount.Amount = decimal.NewFromFloat(-10)
	_, err = models.Transfer(models.DB, negativeAmount)
	suite.Assert().ErrorIs(err, models.ErrAmountNotPositive)

	selfTransfer := request
	selfTransfer.ToProjectID = source.ID
	_, err = models.Transfer(models.DB, selfTransfer)
	suite.Assert().ErrorIs(err, models.ErrSelfTransfer)

	emptyKey := request
	emptyKey.ToCategoryKey = "  "
	_, err = models.Transfer(models.DB, emptyKey)
	suite.Assert().ErrorIs(err, models.ErrCategoryKeyEmpty)
}

func (suite *TestSuiteStandard) TestTransferSourceProjectNotActive() {
	source := suite.createTestProject(models.Project{Name: "Done", Status: models.ProjectStatusCompleted})
	destination := suite.createTestProject(models.Project{Name: "Destination"})

	suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   source.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(100),
	})

	_, err := models.Transfer(models.DB, models.TransferRequest{
		FromProjectID:   source.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     destination.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(10),
	})
	suite.Assert().ErrorIs(err, models.ErrProjectNotActive)
}

func (suite *TestSuiteStandard) TestTransferAtomic() {
	source := suite.createTestProject(models.Project{Name: "Source"})
	destination := suite.createTestProject(models.Project{Name: "Destination"})

	suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   source.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(100),
	})

	// Fail the write of the incoming leg to verify that the whole transfer
	// rolls back
	err := models.DB.Callback().Create().Before("gorm:create").Register("fail_transfer_in", func(tx *gorm.DB) {
		if transaction, ok := tx.Statement.Dest.(*models.Transaction); ok && transaction.Kind == models.KindTransferIn {
			_ = tx.AddError(errors.New("write failed"))
		}
	})
	suite.Require().NoError(err)
	defer func() {
		_ = models.DB.Callback().Create().Remove("fail_transfer_in")
	}()

	_, err = models.Transfer(models.DB, models.TransferRequest{
		FromProjectID:   source.ID,
		FromCategoryKey: "SUPPLIES",
		ToProjectID:     destination.ID,
		ToCategoryKey:   "SUPPLIES",
		Amount:          decimal.NewFromFloat(10),
	})
	suite.Require().Error(err)

	// Neither the outgoing leg nor the implicitly created category may
	// survive the rollback
	var transactions int64
	suite.Require().NoError(models.DB.Model(&models.Transaction{}).Count(&transactions).Error)
	suite.Assert().Equal(int64(0), transactions, "No transfer leg may be stored after the rollback")

	var allocations int64
	suite.Require().NoError(models.DB.Model(&models.CategoryAllocation{}).Where("project_id = ?", destination.ID).Count(&allocations).Error)
	suite.Assert().Equal(int64(0), allocations, "No category may be created after the rollback")
}
