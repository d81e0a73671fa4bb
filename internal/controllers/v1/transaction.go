package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolbudget/backend/internal/httputil"
	"github.com/schoolbudget/backend/internal/models"
	sb_uuid "github.com/schoolbudget/backend/internal/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsTransactionList)
		r.GET("", GetTransactions)
		r.POST("", CreateTransactions)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", OptionsTransactionDetail)
		r.GET("/:id", GetTransaction)
		r.DELETE("/:id", DeleteTransaction)
	}
}

type TransactionEditable struct {
	ProjectID   uuid.UUID              `json:"projectId" example:"d430d7c3-d14c-4712-9336-ee56965a6673"` // ID of the project the transaction posts against
	CategoryKey string                 `json:"categoryKey" example:"SUPPLIES"`                           // Category key
	Kind        models.TransactionKind `json:"kind" example:"expense"`                                   // income or expense. Transfer legs are created through the transfers endpoint.
	Amount      decimal.Decimal        `json:"amount" example:"14.03" minimum:"0.00000001"`              // The amount, always positive. The kind determines the sign.
	Date        time.Time              `json:"date" example:"2026-08-30T00:00:00Z"`                      // Date of the transaction
	Note        string                 `json:"note" example:"Poster paint" default:""`                   // A note
	Reference   string                 `json:"reference" example:"INV-2026-0117" default:""`             // Optional reference code
	ActorID     string                 `json:"actorId" example:"jdoe"`                                   // The user posting the transaction
}

// model returns the database resource for the API representation of the editable fields
func (editable TransactionEditable) model() models.Transaction {
	return models.Transaction{
		ProjectID:   editable.ProjectID,
		CategoryKey: editable.CategoryKey,
		Kind:        editable.Kind,
		Amount:      editable.Amount,
		Date:        editable.Date,
		Note:        editable.Note,
		Reference:   editable.Reference,
		ActorID:     editable.ActorID,
	}
}

type TransactionLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/transactions/d430d7c3-d14c-4712-9336-ee56965a6673"` // The transaction itself
}

// Transaction is the API representation of a transaction.
type Transaction struct {
	models.DefaultModel
	TransactionEditable

	// Transfer legs only
	PairID                  *uuid.UUID `json:"pairId,omitempty"`                  // Shared ID of the two legs of a transfer
	CounterpartyProjectID   *uuid.UUID `json:"counterpartyProjectId,omitempty"`   // The project on the other side of a transfer
	CounterpartyCategoryKey string     `json:"counterpartyCategoryKey,omitempty"` // The category on the other side of a transfer

	Links TransactionLinks `json:"links"`
}

// newTransaction returns the API representation of the resource
func newTransaction(_ *gin.Context, model models.Transaction) Transaction {
	return Transaction{
		DefaultModel: model.DefaultModel,
		TransactionEditable: TransactionEditable{
			ProjectID:   model.ProjectID,
			CategoryKey: model.CategoryKey,
			Kind:        model.Kind,
			Amount:      model.Amount,
			Date:        model.Date,
			Note:        model.Note,
			Reference:   model.Reference,
			ActorID:     model.ActorID,
		},
		PairID:                  model.PairID,
		CounterpartyProjectID:   model.CounterpartyProjectID,
		CounterpartyCategoryKey: model.CounterpartyCategoryKey,
		Links: TransactionLinks{
			Self: fmt.Sprintf("/v1/transactions/%s", model.ID),
		},
	}
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`                                                          // Data for the transaction
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionCreateResponse struct {
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []TransactionResponse `json:"data"`                                                          // List of created transactions
}

func (t *TransactionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TransactionResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Router			/v1/transactions/{id} [options]
func OptionsTransactionDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetDelete(c)
}

// @Summary		Create transactions
// @Description	Creates new income or expense transactions. Transfer legs are created through the transfers endpoint.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201				{object}	TransactionCreateResponse
// @Failure		400				{object}	TransactionCreateResponse
// @Failure		404				{object}	TransactionCreateResponse
// @Failure		500				{object}	TransactionCreateResponse
// @Param			transactions	body		[]TransactionEditable	true	"Transactions"
// @Router			/v1/transactions [post]
func CreateTransactions(c *gin.Context) {
	var editables []TransactionEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	s := http.StatusCreated
	r := TransactionCreateResponse{}

	for _, editable := range editables {
		transaction, err := models.CreateTransaction(models.DB, editable.model())
		if err != nil {
			s = r.appendError(err, s)
			continue
		}

		data := newTransaction(c, transaction)
		r.Data = append(r.Data, TransactionResponse{Data: &data})
	}

	c.JSON(s, r)
}

// @Summary		Get transactions
// @Description	Returns a list of transactions
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	TransactionListResponse
// @Router			/v1/transactions [get]
// @Param			project		query	string	false	"Filter by project ID"
// @Param			category	query	string	false	"Filter by category key"
// @Param			kind		query	string	false	"Filter by transaction kind"
// @Param			fromDate	query	string	false	"Transactions at and after this date"
// @Param			untilDate	query	string	false	"Transactions before and at this date"
// @Param			offset		query	uint	false	"The offset of the first Transaction returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of Transactions to return. Defaults to 50."
func GetTransactions(c *gin.Context) {
	var filter struct {
		Project   sb_uuid.UUID `form:"project"`
		Category  string       `form:"category"`
		Kind      string       `form:"kind"`
		FromDate  time.Time    `form:"fromDate" time_format:"2006-01-02" time_utc:"1"`
		UntilDate time.Time    `form:"untilDate" time_format:"2006-01-02" time_utc:"1"`
		Offset    uint         `form:"offset"`
		Limit     int          `form:"limit"`
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{Error: &e})
		return
	}

	// Build a fresh query per use, gorm chains must not be reused across
	// Count and Find
	filtered := func() *gorm.DB {
		query := models.DB.Model(&models.Transaction{})

		if filter.Project != sb_uuid.Nil {
			query = query.Where("project_id = ?", filter.Project.UUID)
		}
		if filter.Category != "" {
			query = query.Where("category_key = ?", models.NormalizeCategoryKey(filter.Category))
		}
		if filter.Kind != "" {
			query = query.Where("kind = ?", filter.Kind)
		}
		if !filter.FromDate.IsZero() {
			query = query.Where("date >= ?", filter.FromDate)
		}
		if !filter.UntilDate.IsZero() {
			query = query.Where("date <= ?", filter.UntilDate)
		}

		return query
	}

	var count int64
	err := filtered().Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{Error: &e})
		return
	}

	// Default to 50 transactions
	limit := 50
	if filter.Limit != 0 {
		limit = filter.Limit
	}

	var transactions []models.Transaction
	err = filtered().
		Order("date DESC").
		Offset(int(filter.Offset)).
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{Error: &e})
		return
	}

	data := make([]Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		data = append(data, newTransaction(c, transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	TransactionResponse
// @Failure		404	{object}	TransactionResponse
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [get]
func GetTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, "id = ?", uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	data := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &data})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction permanently. Deleting a transfer leg deletes both legs of the pair.
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [delete]
func DeleteTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DeleteTransaction(models.DB, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
