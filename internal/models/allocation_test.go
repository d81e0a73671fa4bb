package models_test

import (
	"github.com/schoolbudget/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestAllocationKeyNormalized() {
	project := suite.createTestProject(models.Project{})

	allocation := suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   project.ID,
		CategoryKey: "art supplies",
		Amount:      decimal.NewFromFloat(100),
	})

	suite.Assert().Equal("ART_SUPPLIES", allocation.CategoryKey)
}

func (suite *TestSuiteStandard) TestAllocationLabelDefault() {
	project := suite.createTestProject(models.Project{})

	allocation := suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   project.ID,
		CategoryKey: "ART_SUPPLIES",
	})
	suite.Assert().Equal("ART SUPPLIES", allocation.Label, "The label has to default to a readable form of the key")

	labeled := suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   project.ID,
		CategoryKey: "TRAVEL",
		Label:       "Fahrtkosten",
	})
	suite.Assert().Equal("Fahrtkosten", labeled.Label)
}

func (suite *TestSuiteStandard) TestAllocationKeyEmpty() {
	project := suite.createTestProject(models.Project{})

	err := models.DB.Create(&models.CategoryAllocation{
		ProjectID:   project.ID,
		CategoryKey: "  ",
	}).Error
	suite.Assert().ErrorIs(err, models.ErrCategoryKeyEmpty)
}

func (suite *TestSuiteStandard) TestAllocationNegativeAmount() {
	project := suite.createTestProject(models.Project{})

	err := models.DB.Create(&models.CategoryAllocation{
		ProjectID:   project.ID,
		CategoryKey: "SUPPLIES",
		Amount:      decimal.NewFromFloat(-10),
	}).Error
	suite.Assert().ErrorIs(err, models.ErrAllocationNegative)
}

func (suite *TestSuiteStandard) TestAllocationKeyUniquePerProject() {
	project := suite.createTestProject(models.Project{})
	other := suite.createTestProject(models.Project{})

	suite.createTestAllocation(models.CategoryAllocation{
		ProjectID:   project.ID,
		CategoryKey: "SUPPLIES",
	})

	// Inputs normalizing to the same key collide
	err := models.DB.Create(&models.CategoryAllocation{
		ProjectID:   project.ID,
		CategoryKey: "supplies",
	}).Error
	suite.Assert().ErrorIs(err, models.ErrCategoryKeyNotUnique)

	// The same key in another project is fine
	err = models.DB.Create(&models.CategoryAllocation{
		ProjectID:   other.ID,
		CategoryKey: "SUPPLIES",
	}).Error
	suite.Assert().NoError(err)
}
