package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolbudget/backend/internal/httputil"
	"github.com/schoolbudget/backend/internal/models"
	"github.com/shopspring/decimal"
)

// RegisterTransferRoutes registers the routes for transfers with
// the RouterGroup that is passed.
func RegisterTransferRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsTransferList)
	r.POST("", CreateTransfer)
}

type TransferEditable struct {
	FromProjectID   uuid.UUID       `json:"fromProjectId" example:"d430d7c3-d14c-4712-9336-ee56965a6673"` // ID of the source project
	FromCategoryKey string          `json:"fromCategoryKey" example:"SUPPLIES"`                           // Source category key
	ToProjectID     uuid.UUID       `json:"toProjectId" example:"8e16b456-a719-48ce-9fec-e115cfa7cbcc"`   // ID of the destination project
	ToCategoryKey   string          `json:"toCategoryKey" example:"SUPPLIES"`                             // Destination category key, created with an allocation of 0 when missing
	Amount          decimal.Decimal `json:"amount" example:"2000" minimum:"0.00000001"`                   // The amount to move
	Date            time.Time       `json:"date" example:"2026-08-30T00:00:00Z"`                          // Date of the transfer
	Note            string          `json:"note" example:"Shared bus rental" default:""`                  // A note, recorded on both legs
	ActorID         string          `json:"actorId" example:"jdoe"`                                       // The user performing the transfer
}

// request returns the engine request for the editable fields
func (editable TransferEditable) request() models.TransferRequest {
	return models.TransferRequest{
		FromProjectID:   editable.FromProjectID,
		FromCategoryKey: editable.FromCategoryKey,
		ToProjectID:     editable.ToProjectID,
		ToCategoryKey:   editable.ToCategoryKey,
		Amount:          editable.Amount,
		Date:            editable.Date,
		Note:            editable.Note,
		ActorID:         editable.ActorID,
	}
}

type TransferResponse struct {
	Data  *models.TransferResult `json:"data"`                                                                    // Both legs of the completed transfer
	Error *string                `json:"error" example:"the remaining balance of the source category is too low"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transfers
// @Success		204
// @Router			/v1/transfers [options]
func OptionsTransferList(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create transfer
// @Description	Moves money between two project categories as one atomic transaction pair. Fails without any writes when the source balance is insufficient.
// @Tags			Transfers
// @Accept			json
// @Produce		json
// @Success		201			{object}	TransferResponse
// @Failure		400			{object}	TransferResponse
// @Failure		404			{object}	TransferResponse
// @Failure		500			{object}	TransferResponse
// @Param			transfer	body		TransferEditable	true	"Transfer"
// @Router			/v1/transfers [post]
func CreateTransfer(c *gin.Context) {
	var editable TransferEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransferResponse{Error: &e})
		return
	}

	result, err := models.Transfer(models.DB, editable.request())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransferResponse{Error: &e})
		return
	}

	c.JSON(http.StatusCreated, TransferResponse{Data: &result})
}
