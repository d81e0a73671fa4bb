package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolbudget/backend/internal/httputil"
	"github.com/schoolbudget/backend/internal/models"
)

type ProjectBalanceResponse struct {
	Data  *models.ProjectBalance `json:"data"`                                                          // The computed project balance
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type CategoryBalanceResponse struct {
	Data  *models.CategoryBalance `json:"data"`                                                          // The computed category balance
	Error *string                 `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type CategoryBalanceListResponse struct {
	Data  []models.CategoryBalance `json:"data"`                                                          // Balances of all categories of the project
	Error *string                  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Balances
// @Success		204
// @Router			/v1/projects/{id}/balance [options]
func OptionsProjectBalance(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Balances
// @Success		204
// @Router			/v1/projects/{id}/categories [options]
func OptionsProjectCategories(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Balances
// @Success		204
// @Router			/v1/projects/{id}/categories/{key}/balance [options]
func OptionsCategoryBalance(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get project balance
// @Description	Returns the computed balance of a project across all its categories
// @Tags			Balances
// @Produce		json
// @Success		200	{object}	ProjectBalanceResponse
// @Failure		400	{object}	ProjectBalanceResponse
// @Failure		404	{object}	ProjectBalanceResponse
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/projects/{id}/balance [get]
func GetProjectBalance(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectBalanceResponse{Error: &e})
		return
	}

	balance, err := models.GetProjectBalance(models.DB, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectBalanceResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, ProjectBalanceResponse{Data: &balance})
}

// @Summary		Get category balances
// @Description	Returns the balances of all categories of a project. Categories that only exist through transactions are included with an allocation of 0.
// @Tags			Balances
// @Produce		json
// @Success		200	{object}	CategoryBalanceListResponse
// @Failure		400	{object}	CategoryBalanceListResponse
// @Failure		404	{object}	CategoryBalanceListResponse
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/projects/{id}/categories [get]
func GetProjectCategoryBalances(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryBalanceListResponse{Error: &e})
		return
	}

	balances, err := models.GetProjectCategoryBalances(models.DB, uri.ID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryBalanceListResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, CategoryBalanceListResponse{Data: balances})
}

// @Summary		Get category balance
// @Description	Returns the computed balance of one category. A category without an allocation returns a zero-valued balance.
// @Tags			Balances
// @Produce		json
// @Success		200	{object}	CategoryBalanceResponse
// @Failure		400	{object}	CategoryBalanceResponse
// @Failure		404	{object}	CategoryBalanceResponse
// @Param			id	path		string	true	"ID formatted as string"
// @Param			key	path		string	true	"Category key"
// @Router			/v1/projects/{id}/categories/{key}/balance [get]
func GetCategoryBalance(c *gin.Context) {
	var uri URICategory
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryBalanceResponse{Error: &e})
		return
	}

	var project models.Project
	err = models.DB.First(&project, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryBalanceResponse{Error: &e})
		return
	}

	balance, err := models.GetCategoryBalance(models.DB, uri.ID.UUID, uri.Key)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryBalanceResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, CategoryBalanceResponse{Data: &balance})
}
