package v1

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/schoolbudget/backend/internal/httputil"
	"github.com/schoolbudget/backend/internal/importer"
	csv_parser "github.com/schoolbudget/backend/internal/importer/parser/csv"
	"github.com/schoolbudget/backend/internal/models"
)

// RegisterImportRoutes registers the batch import routes with the
// RouterGroup that is passed.
func RegisterImportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsImport)
	r.POST("", Import)
}

type ImportQuery struct {
	Actor string `form:"actor" binding:"required"` // The user running the import, recorded on all imported transactions
}

type ImportResponse struct {
	Data  *importer.Result `json:"data"`                                              // The import result with per-record outcomes
	Error *string          `json:"error" example:"you must send a file to this endpoint"` // The error, if any occurred
}

// getUploadedFile returns the form file and handles potential errors.
func getUploadedFile(c *gin.Context, suffix string) (multipart.File, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil {
		return nil, errNoFilePost
	}

	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(formFile.Filename, suffix) {
		return nil, fmt.Errorf("%w: %s", errWrongFileSuffix, suffix)
	}

	f, err := formFile.Open()
	if err != nil {
		return nil, err
	}

	return f, nil
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import [options]
func OptionsImport(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Import batch
// @Description	Imports a CSV batch file of transactions and transfers. Records that duplicate stored transactions or earlier records of the same file are skipped; per-record validation failures are reported without aborting the batch.
// @Tags			Import
// @Accept			multipart/form-data
// @Produce		json
// @Success		200		{object}	ImportResponse
// @Failure		400		{object}	ImportResponse
// @Failure		500		{object}	ImportResponse
// @Param			file	formData	file	true	"The batch file"
// @Param			actor	query		string	true	"The user running the import"
// @Router			/v1/import [post]
func Import(c *gin.Context) {
	var query ImportQuery
	err := c.BindQuery(&query)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ImportResponse{Error: &e})
		return
	}

	file, err := getUploadedFile(c, ".csv")
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportResponse{Error: &e})
		return
	}

	records, err := csv_parser.Parse(file)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ImportResponse{Error: &e})
		return
	}

	result, err := importer.ImportBatch(models.DB, records, query.Actor)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, ImportResponse{Data: &result})
}
