package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolbudget/backend/internal/httputil"
	"github.com/schoolbudget/backend/internal/models"
	sb_uuid "github.com/schoolbudget/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// RegisterAllocationRoutes registers the routes for category allocations
// with the RouterGroup that is passed.
func RegisterAllocationRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsAllocationList)
		r.GET("", GetAllocations)
		r.POST("", CreateAllocations)
	}

	// Allocation with ID
	{
		r.OPTIONS("/:id", OptionsAllocationDetail)
		r.GET("/:id", GetAllocation)
		r.PATCH("/:id", UpdateAllocation)
		r.DELETE("/:id", DeleteAllocation)
	}
}

type AllocationEditable struct {
	ProjectID   uuid.UUID       `json:"projectId" example:"d430d7c3-d14c-4712-9336-ee56965a6673"`            // ID of the project the allocation belongs to
	CategoryKey string          `json:"categoryKey" example:"SUPPLIES"`                                      // Category key, normalized to uppercase underscore tokens
	Amount      decimal.Decimal `json:"amount" example:"10000" minimum:"0.00000000" multipleOf:"0.00000001"` // The allocated amount, must not be negative
	Label       string          `json:"label" example:"Supplies" default:""`                                 // Human readable label shown to operators
	Note        string          `json:"note" example:"Increased for the fair" default:""`                    // A note
}

// model returns the database resource for the API representation of the editable fields
func (editable AllocationEditable) model() models.CategoryAllocation {
	return models.CategoryAllocation{
		ProjectID:   editable.ProjectID,
		CategoryKey: editable.CategoryKey,
		Amount:      editable.Amount,
		Label:       editable.Label,
		Note:        editable.Note,
	}
}

type AllocationLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/allocations/d430d7c3-d14c-4712-9336-ee56965a6673"` // The allocation itself
}

// Allocation is the API representation of a category allocation.
type Allocation struct {
	models.DefaultModel
	AllocationEditable
	AutoCreated bool            `json:"autoCreated"` // True when the allocation was created by a transfer
	Links       AllocationLinks `json:"links"`
}

// newAllocation returns the API representation of the resource
func newAllocation(_ *gin.Context, model models.CategoryAllocation) Allocation {
	return Allocation{
		DefaultModel: model.DefaultModel,
		AllocationEditable: AllocationEditable{
			ProjectID:   model.ProjectID,
			CategoryKey: model.CategoryKey,
			Amount:      model.Amount,
			Label:       model.Label,
			Note:        model.Note,
		},
		AutoCreated: model.AutoCreated,
		Links: AllocationLinks{
			Self: fmt.Sprintf("/v1/allocations/%s", model.ID),
		},
	}
}

type AllocationResponse struct {
	Data  *Allocation `json:"data"`                                                          // Data for the allocation
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AllocationListResponse struct {
	Data  []Allocation `json:"data"`                                                          // List of allocations
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AllocationCreateResponse struct {
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []AllocationResponse `json:"data"`                                                          // List of created allocations
}

func (a *AllocationCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	a.Data = append(a.Data, AllocationResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations [options]
func OptionsAllocationList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Router			/v1/allocations/{id} [options]
func OptionsAllocationDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var allocation models.CategoryAllocation
	err = models.DB.First(&allocation, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create allocations
// @Description	Creates new category allocations
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		201			{object}	AllocationCreateResponse
// @Failure		400			{object}	AllocationCreateResponse
// @Failure		500			{object}	AllocationCreateResponse
// @Param			allocations	body		[]AllocationEditable	true	"Allocations"
// @Router			/v1/allocations [post]
func CreateAllocations(c *gin.Context) {
	var editables []AllocationEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationCreateResponse{Error: &e})
		return
	}

	s := http.StatusCreated
	r := AllocationCreateResponse{}

	for _, editable := range editables {
		allocation := editable.model()

		// Verify that the project exists
		var project models.Project
		err := models.DB.First(&project, "id = ?", allocation.ProjectID).Error
		if err != nil {
			s = r.appendError(err, s)
			continue
		}

		err = models.DB.Create(&allocation).Error
		if err != nil {
			s = r.appendError(err, s)
			continue
		}

		data := newAllocation(c, allocation)
		r.Data = append(r.Data, AllocationResponse{Data: &data})
	}

	c.JSON(s, r)
}

// @Summary		Get allocations
// @Description	Returns a list of category allocations
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationListResponse
// @Failure		400	{object}	AllocationListResponse
// @Router			/v1/allocations [get]
// @Param			project	query	string	false	"Filter by project ID"
func GetAllocations(c *gin.Context) {
	var filter struct {
		Project sb_uuid.UUID `form:"project"`
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationListResponse{Error: &e})
		return
	}

	query := models.DB.Order("category_key ASC")
	if filter.Project != sb_uuid.Nil {
		query = query.Where("project_id = ?", filter.Project.UUID)
	}

	var allocations []models.CategoryAllocation
	err := query.Find(&allocations).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationListResponse{Error: &e})
		return
	}

	data := make([]Allocation, 0, len(allocations))
	for _, allocation := range allocations {
		data = append(data, newAllocation(c, allocation))
	}

	c.JSON(http.StatusOK, AllocationListResponse{Data: data})
}

// @Summary		Get allocation
// @Description	Returns a specific category allocation
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationResponse
// @Failure		400	{object}	AllocationResponse
// @Failure		404	{object}	AllocationResponse
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/allocations/{id} [get]
func GetAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	var allocation models.CategoryAllocation
	err = models.DB.First(&allocation, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	data := newAllocation(c, allocation)
	c.JSON(http.StatusOK, AllocationResponse{Data: &data})
}

// @Summary		Update allocation
// @Description	Updates an existing category allocation
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		200			{object}	AllocationResponse
// @Failure		400			{object}	AllocationResponse
// @Failure		404			{object}	AllocationResponse
// @Param			id			path		string				true	"ID formatted as string"
// @Param			allocation	body		AllocationEditable	true	"Allocation"
// @Router			/v1/allocations/{id} [patch]
func UpdateAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	var allocation models.CategoryAllocation
	err = models.DB.First(&allocation, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	var editable AllocationEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	err = models.DB.Model(&allocation).Updates(editable.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	data := newAllocation(c, allocation)
	c.JSON(http.StatusOK, AllocationResponse{Data: &data})
}

// @Summary		Delete allocation
// @Description	Deletes a category allocation
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/allocations/{id} [delete]
func DeleteAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var allocation models.CategoryAllocation
	err = models.DB.First(&allocation, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Delete(&allocation).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
