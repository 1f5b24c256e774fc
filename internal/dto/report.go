package dto

import (
	"strconv"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
)

// ReportForm captures the create and edit form fields. Multipart field names
// match the upstream API.
type ReportForm struct {
	ProgramID        *int64 `form:"programId" json:"programId" validate:"required"`
	RecipientCount   *int64 `form:"recipientCount" json:"recipientCount" validate:"required,gte=0"`
	Region           string `form:"region" json:"region" validate:"required"`
	DistributionDate string `form:"distributionDate" json:"distributionDate" validate:"required"`
	Note             string `form:"note" json:"note"`
}

// EditFormState pre-populates the edit screen.
type EditFormState struct {
	ID            int64               `json:"id"`
	Form          ReportForm          `json:"form"`
	Status        models.ReportStatus `json:"status"`
	ExistingProof string              `json:"existingProof,omitempty"`
	ProofURL      string              `json:"proofUrl,omitempty"`
}

// NewEditFormState maps a stored report onto form state.
func NewEditFormState(r models.Report, proofURL string) EditFormState {
	programID := r.ProgramID
	if programID == 0 {
		programID = r.Program.ID
	}
	count := int64(r.RecipientCount)
	form := ReportForm{
		RecipientCount:   &count,
		Region:           r.Region,
		DistributionDate: r.DistributionDate.String(),
		Note:             r.Note,
	}
	if programID != 0 {
		form.ProgramID = &programID
	}
	return EditFormState{
		ID:            r.ID,
		Form:          form,
		Status:        r.Status,
		ExistingProof: r.Proof,
		ProofURL:      proofURL,
	}
}

// ReportRow is one rendered table row.
type ReportRow struct {
	ID               int64               `json:"id"`
	ProgramName      string              `json:"programName"`
	Region           string              `json:"region"`
	RecipientCount   int64               `json:"recipientCount"`
	DistributionDate string              `json:"distributionDate"`
	Status           models.ReportStatus `json:"status"`
	StatusColor      string              `json:"statusColor"`
	ProofURL         string              `json:"proofUrl,omitempty"`
	EditPath         string              `json:"editPath"`
}

// ReportTableView is the rendered report table screen.
type ReportTableView struct {
	Rows    []ReportRow         `json:"rows"`
	Options models.FacetOptions `json:"options"`
	Filter  models.FilterState  `json:"filter"`
	Total   int                 `json:"total"`
	Visible int                 `json:"visible"`
}

// NewReportTableView renders the filtered rows. proofURL resolves stored proof
// paths and may be nil.
func NewReportTableView(rows []models.Report, options models.FacetOptions, filter models.FilterState, total int, proofURL func(string) string) ReportTableView {
	view := ReportTableView{
		Rows:    make([]ReportRow, 0, len(rows)),
		Options: options,
		Filter:  filter,
		Total:   total,
		Visible: len(rows),
	}
	for _, r := range rows {
		row := ReportRow{
			ID:               r.ID,
			ProgramName:      r.ProgramName(),
			Region:           r.Region,
			RecipientCount:   int64(r.RecipientCount),
			DistributionDate: r.DistributionDate.String(),
			Status:           r.Status,
			StatusColor:      r.Status.Color(),
			EditPath:         "/edit-report/" + strconv.FormatInt(r.ID, 10),
		}
		if proofURL != nil {
			row.ProofURL = proofURL(r.Proof)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}
