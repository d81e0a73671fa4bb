package models_test

import (
	"github.com/schoolbudget/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestProjectTrimWhitespace() {
	project := suite.createTestProject(models.Project{
		Name:        " Chemistry fair ",
		WorkGroup:   " science\t",
		Responsible: " jdoe ",
		Note:        " Annual school fair ",
	})

	suite.Assert().Equal("Chemistry fair", project.Name)
	suite.Assert().Equal("science", project.WorkGroup)
	suite.Assert().Equal("jdoe", project.Responsible)
	suite.Assert().Equal("Annual school fair", project.Note)
}

func (suite *TestSuiteStandard) TestProjectStatusDefault() {
	project := suite.createTestProject(models.Project{Name: "No status"})
	suite.Assert().Equal(models.ProjectStatusActive, project.Status)
}

func (suite *TestSuiteStandard) TestProjectStatusInvalid() {
	err := models.DB.Create(&models.Project{Name: "Broken", Status: "archived"}).Error
	suite.Assert().ErrorIs(err, models.ErrProjectStatusInvalid)
}

func (suite *TestSuiteStandard) TestProjectUpdateWithoutTransactions() {
	project := suite.createTestProject(models.Project{Name: "Initial name"})

	err := models.DB.Model(&project).Updates(models.Project{Name: "Updated name"}).Error
	suite.Assert().NoError(err, "A project without transactions has to be editable")
}

func (suite *TestSuiteStandard) TestProjectImmutableWithTransactions() {
	project := suite.createTestProject(models.Project{Name: "Referenced"})
	suite.createTestTransaction(models.Transaction{
		ProjectID:   project.ID,
		CategoryKey: "SUPPLIES",
		Kind:        models.KindExpense,
		Amount:      decimal.NewFromFloat(10),
	})

	err := models.DB.Model(&project).Updates(models.Project{Name: "New name"}).Error
	suite.Assert().ErrorIs(err, models.ErrProjectImmutable)

	// The status transition stays permitted
	err = models.DB.Model(&project).Updates(models.Project{Status: models.ProjectStatusCompleted}).Error
	suite.Assert().NoError(err, "The status transition has to stay possible")
}
