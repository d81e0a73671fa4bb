package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schoolbudget/backend/internal/httputil"
	"github.com/schoolbudget/backend/internal/models"
	sb_uuid "github.com/schoolbudget/backend/internal/uuid"
)

// RegisterSummaryRoutes registers the summary route with the RouterGroup
// that is passed.
func RegisterSummaryRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsSummary)
	r.GET("", GetSummary)
}

type SummaryResponse struct {
	Data  *models.SummaryReport `json:"data"`                                                          // The aggregated report
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Summary
// @Success		204
// @Router			/v1/summary [options]
func OptionsSummary(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get summary
// @Description	Returns category balances aggregated across the filtered projects, grouped by category label and by work group, with high-usage flags
// @Tags			Summary
// @Produce		json
// @Success		200	{object}	SummaryResponse
// @Failure		400	{object}	SummaryResponse
// @Router			/v1/summary [get]
// @Param			project		query	string	false	"Filter by project ID"
// @Param			fiscalYear	query	int		false	"Filter by fiscal year"
// @Param			fromDate	query	string	false	"Transactions at and after this date"
// @Param			untilDate	query	string	false	"Transactions before and at this date"
// @Param			workGroup	query	string	false	"Filter by work group, supports globbing with *"
func GetSummary(c *gin.Context) {
	var query struct {
		Project    sb_uuid.UUID `form:"project"`
		FiscalYear int          `form:"fiscalYear"`
		FromDate   time.Time    `form:"fromDate" time_format:"2006-01-02" time_utc:"1"`
		UntilDate  time.Time    `form:"untilDate" time_format:"2006-01-02" time_utc:"1"`
		WorkGroup  string       `form:"workGroup"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		e := err.Error()
		c.JSON(status(err), SummaryResponse{Error: &e})
		return
	}

	filter := models.SummaryFilter{
		WorkGroup: query.WorkGroup,
	}
	if query.Project != sb_uuid.Nil {
		filter.ProjectID = &query.Project.UUID
	}
	if query.FiscalYear != 0 {
		filter.FiscalYear = &query.FiscalYear
	}
	if !query.FromDate.IsZero() {
		filter.From = &query.FromDate
	}
	if !query.UntilDate.IsZero() {
		filter.Until = &query.UntilDate
	}

	report, err := models.Summarize(models.DB, filter)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SummaryResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{Data: &report})
}
