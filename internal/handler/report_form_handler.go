package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ricoeriii/pengelola-bansos/internal/dto"
	"github.com/ricoeriii/pengelola-bansos/internal/models"
	"github.com/ricoeriii/pengelola-bansos/internal/service"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/response"
)

// ReportFormHandler serves the create and edit report screens.
type ReportFormHandler struct {
	forms         *service.ReportFormService
	notifications *service.NotificationService
}

// NewReportFormHandler constructs the handler.
func NewReportFormHandler(forms *service.ReportFormService, notifications *service.NotificationService) *ReportFormHandler {
	return &ReportFormHandler{forms: forms, notifications: notifications}
}

// Create godoc
// @Summary Submit a new report
// @Tags Reports
// @Accept multipart/form-data
// @Produce json
// @Param programId formData int true "Program ID"
// @Param recipientCount formData int true "Recipient count"
// @Param region formData string true "Region"
// @Param distributionDate formData string true "Distribution date (YYYY-MM-DD)"
// @Param note formData string false "Note"
// @Param proof formData file true "Proof document (.jpg, .png, .pdf)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /create-report [post]
func (h *ReportFormHandler) Create(c *gin.Context) {
	form, proof, closer, err := bindReportForm(c)
	if err != nil {
		response.Error(c, err, notify(c, h.notifications, models.Failure(models.MsgSubmitFailed)))
		return
	}
	defer closer()

	result, err := h.forms.Create(c.Request.Context(), form, proof)
	h.respond(c, http.StatusCreated, result, err)
}

// EditForm godoc
// @Summary Load a report into the edit form
// @Tags Reports
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /edit-report/{id} [get]
func (h *ReportFormHandler) EditForm(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	state, err := h.forms.LoadForEdit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, notify(c, h.notifications, models.Failure(models.MsgLoadFailed)))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"state": state, "programs": h.forms.Programs()})
}

// Update godoc
// @Summary Resubmit an edited report
// @Tags Reports
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Report ID"
// @Param proof formData file false "Replacement proof document"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /edit-report/{id} [put]
func (h *ReportFormHandler) Update(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	form, proof, closer, err := bindReportForm(c)
	if err != nil {
		response.Error(c, err, notify(c, h.notifications, models.Failure(models.MsgSubmitFailed)))
		return
	}
	defer closer()

	result, err := h.forms.Update(c.Request.Context(), id, form, proof)
	h.respond(c, http.StatusOK, result, err)
}

func (h *ReportFormHandler) respond(c *gin.Context, status int, result *service.SubmitResult, err error) {
	meta := notify(c, h.notifications, result.Notification)
	if err != nil {
		if len(result.FieldErrors) > 0 {
			meta["fields"] = result.FieldErrors
		}
		response.Error(c, err, meta)
		return
	}
	meta["redirect"] = result.Redirect
	response.JSON(c, status, result.Report, meta)
}

// bindReportForm reads the multipart form. The returned closer releases the
// uploaded proof file.
func bindReportForm(c *gin.Context) (dto.ReportForm, *service.ProofFile, func(), error) {
	noop := func() {}
	var form dto.ReportForm
	if err := c.ShouldBind(&form); err != nil {
		return form, nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report form")
	}
	// Binding turns a blank number field into a pointer to zero; a blank
	// field must stay unset so the required check rejects it.
	if strings.TrimSpace(c.PostForm("programId")) == "" {
		form.ProgramID = nil
	}
	if strings.TrimSpace(c.PostForm("recipientCount")) == "" {
		form.RecipientCount = nil
	}

	header, err := c.FormFile("proof")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return form, nil, noop, nil
	}
	if err != nil {
		return form, nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proof upload")
	}
	file, err := header.Open()
	if err != nil {
		return form, nil, noop, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open proof upload")
	}
	proof := &service.ProofFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     io.Reader(file),
	}
	return form, proof, func() { _ = file.Close() }, nil
}
