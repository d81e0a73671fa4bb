package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schoolbudget/backend/internal/httputil"
	"github.com/schoolbudget/backend/internal/models"
)

// RegisterProjectRoutes registers the routes for projects with
// the RouterGroup that is passed.
func RegisterProjectRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsProjectList)
		r.GET("", GetProjects)
		r.POST("", CreateProjects)
	}

	// Project with ID
	{
		r.OPTIONS("/:id", OptionsProjectDetail)
		r.GET("/:id", GetProject)
		r.PATCH("/:id", UpdateProject)
		r.DELETE("/:id", DeleteProject)
	}

	// Computed balances
	{
		r.OPTIONS("/:id/balance", OptionsProjectBalance)
		r.GET("/:id/balance", GetProjectBalance)
		r.OPTIONS("/:id/categories", OptionsProjectCategories)
		r.GET("/:id/categories", GetProjectCategoryBalances)
		r.OPTIONS("/:id/categories/:key/balance", OptionsCategoryBalance)
		r.GET("/:id/categories/:key/balance", GetCategoryBalance)
	}
}

type ProjectEditable struct {
	Name        string               `json:"name" example:"Chemistry fair" default:""`
	WorkGroup   string               `json:"workGroup" example:"science" default:""`
	Responsible string               `json:"responsible" example:"jdoe" default:""`
	Status      models.ProjectStatus `json:"status" example:"active" default:"active"`
	StartDate   *time.Time           `json:"startDate" example:"2026-08-01T00:00:00Z"`
	EndDate     *time.Time           `json:"endDate" example:"2027-07-31T00:00:00Z"`
	FiscalYear  int                  `json:"fiscalYear" example:"2026"`
	Note        string               `json:"note" example:"Annual school fair" default:""`
}

// model returns the database resource for the API representation of the editable fields
func (editable ProjectEditable) model() models.Project {
	return models.Project{
		Name:        editable.Name,
		WorkGroup:   editable.WorkGroup,
		Responsible: editable.Responsible,
		Status:      editable.Status,
		StartDate:   editable.StartDate,
		EndDate:     editable.EndDate,
		FiscalYear:  editable.FiscalYear,
		Note:        editable.Note,
	}
}

type ProjectLinks struct {
	Self       string `json:"self" example:"https://example.com/api/v1/projects/d430d7c3-d14c-4712-9336-ee56965a6673"`            // The project itself
	Balance    string `json:"balance" example:"https://example.com/api/v1/projects/d430d7c3-d14c-4712-9336-ee56965a6673/balance"` // The computed project balance
	Categories string `json:"categories" example:"https://example.com/api/v1/projects/d430d7c3-d14c-4712-9336-ee56965a6673/categories"`
}

// Project is the API representation of a project.
type Project struct {
	models.DefaultModel
	ProjectEditable
	Links ProjectLinks `json:"links"`
}

// newProject returns the API representation of the resource
func newProject(_ *gin.Context, model models.Project) Project {
	return Project{
		DefaultModel: model.DefaultModel,
		ProjectEditable: ProjectEditable{
			Name:        model.Name,
			WorkGroup:   model.WorkGroup,
			Responsible: model.Responsible,
			Status:      model.Status,
			StartDate:   model.StartDate,
			EndDate:     model.EndDate,
			FiscalYear:  model.FiscalYear,
			Note:        model.Note,
		},
		Links: ProjectLinks{
			Self:       fmt.Sprintf("/v1/projects/%s", model.ID),
			Balance:    fmt.Sprintf("/v1/projects/%s/balance", model.ID),
			Categories: fmt.Sprintf("/v1/projects/%s/categories", model.ID),
		},
	}
}

type ProjectResponse struct {
	Data  *Project `json:"data"`                                                          // Data for the project
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ProjectListResponse struct {
	Data  []Project `json:"data"`                                                          // List of projects
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ProjectCreateResponse struct {
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []ProjectResponse `json:"data"`                                                          // List of created projects
}

func (p *ProjectCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	p.Data = append(p.Data, ProjectResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Projects
// @Success		204
// @Router			/v1/projects [options]
func OptionsProjectList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Projects
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Router			/v1/projects/{id} [options]
func OptionsProjectDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var project models.Project
	err = models.DB.First(&project, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create projects
// @Description	Creates new projects
// @Tags			Projects
// @Accept			json
// @Produce		json
// @Success		201			{object}	ProjectCreateResponse
// @Failure		400			{object}	ProjectCreateResponse
// @Failure		500			{object}	ProjectCreateResponse
// @Param			projects	body		[]ProjectEditable	true	"Projects"
// @Router			/v1/projects [post]
func CreateProjects(c *gin.Context) {
	var editables []ProjectEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	s := http.StatusCreated
	r := ProjectCreateResponse{}

	for _, editable := range editables {
		project := editable.model()

		err = models.DB.Create(&project).Error
		if err != nil {
			s = r.appendError(err, s)
			continue
		}

		data := newProject(c, project)
		r.Data = append(r.Data, ProjectResponse{Data: &data})
	}

	c.JSON(s, r)
}

// @Summary		Get projects
// @Description	Returns a list of projects
// @Tags			Projects
// @Produce		json
// @Success		200	{object}	ProjectListResponse
// @Failure		500	{object}	ProjectListResponse
// @Router			/v1/projects [get]
// @Param			status		query	string	false	"Filter by status"
// @Param			workGroup	query	string	false	"Filter by work group"
// @Param			fiscalYear	query	int		false	"Filter by fiscal year"
func GetProjects(c *gin.Context) {
	var filter struct {
		Status     string `form:"status"`
		WorkGroup  string `form:"workGroup"`
		FiscalYear int    `form:"fiscalYear"`
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectListResponse{Error: &e})
		return
	}

	query := models.DB.Where(&models.Project{
		Status:     models.ProjectStatus(filter.Status),
		WorkGroup:  filter.WorkGroup,
		FiscalYear: filter.FiscalYear,
	})

	var projects []models.Project
	err := query.Find(&projects).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectListResponse{Error: &e})
		return
	}

	data := make([]Project, 0, len(projects))
	for _, project := range projects {
		data = append(data, newProject(c, project))
	}

	c.JSON(http.StatusOK, ProjectListResponse{Data: data})
}

// @Summary		Get project
// @Description	Returns a specific project
// @Tags			Projects
// @Produce		json
// @Success		200	{object}	ProjectResponse
// @Failure		400	{object}	ProjectResponse
// @Failure		404	{object}	ProjectResponse
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/projects/{id} [get]
func GetProject(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectResponse{Error: &e})
		return
	}

	var project models.Project
	err = models.DB.First(&project, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectResponse{Error: &e})
		return
	}

	data := newProject(c, project)
	c.JSON(http.StatusOK, ProjectResponse{Data: &data})
}

// @Summary		Update project
// @Description	Updates an existing project. Once transactions reference the project, only the status can be changed.
// @Tags			Projects
// @Accept			json
// @Produce		json
// @Success		200		{object}	ProjectResponse
// @Failure		400		{object}	ProjectResponse
// @Failure		404		{object}	ProjectResponse
// @Param			id		path		string			true	"ID formatted as string"
// @Param			project	body		ProjectEditable	true	"Project"
// @Router			/v1/projects/{id} [patch]
func UpdateProject(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectResponse{Error: &e})
		return
	}

	var project models.Project
	err = models.DB.First(&project, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectResponse{Error: &e})
		return
	}

	var editable ProjectEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectResponse{Error: &e})
		return
	}

	err = models.DB.Model(&project).Updates(editable.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectResponse{Error: &e})
		return
	}

	data := newProject(c, project)
	c.JSON(http.StatusOK, ProjectResponse{Data: &data})
}

// @Summary		Delete project
// @Description	Deletes a project
// @Tags			Projects
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/projects/{id} [delete]
func DeleteProject(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var project models.Project
	err = models.DB.First(&project, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Delete(&project).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
