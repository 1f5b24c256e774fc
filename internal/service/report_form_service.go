package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/dto"
	"github.com/ricoeriii/pengelola-bansos/internal/models"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/reportapi"
)

// Redirect target after a successful submission.
const ReportsPath = "/reports"

// MsgFieldRequired is the inline message for an empty required field.
const MsgFieldRequired = "Wajib diisi"

type reportFormStore interface {
	Get(ctx context.Context, id int64) (*models.Report, error)
	Create(ctx context.Context, payload reportapi.Multipart) (*models.Report, error)
	Update(ctx context.Context, id int64, payload reportapi.Multipart) (*models.Report, error)
	ProofURL(proof string) string
}

// ProofFile is the single selected proof document.
type ProofFile struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// ProofPolicy restricts which proof documents may be uploaded.
type ProofPolicy struct {
	MaxBytes          int64
	AllowedExtensions []string
}

// DefaultProofPolicy accepts images and PDFs up to 10 MiB.
func DefaultProofPolicy() ProofPolicy {
	return ProofPolicy{MaxBytes: 10 << 20, AllowedExtensions: []string{".jpg", ".png", ".pdf"}}
}

// SubmitResult reports the outcome of a create or edit submission.
type SubmitResult struct {
	Report       *models.Report      `json:"report,omitempty"`
	Notification models.Notification `json:"notification"`
	Redirect     string              `json:"redirect,omitempty"`
	FieldErrors  map[string]string   `json:"fieldErrors,omitempty"`
}

// ReportFormService backs the create and edit report screens.
type ReportFormService struct {
	store     reportFormStore
	validator *validator.Validate
	policy    ProofPolicy
	logger    *zap.Logger
}

// NewReportFormService constructs the form service.
func NewReportFormService(store reportFormStore, validate *validator.Validate, policy ProofPolicy, logger *zap.Logger) *ReportFormService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultProofPolicy()
	if policy.MaxBytes <= 0 {
		policy.MaxBytes = def.MaxBytes
	}
	if len(policy.AllowedExtensions) == 0 {
		policy.AllowedExtensions = def.AllowedExtensions
	}
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &ReportFormService{store: store, validator: validate, policy: policy, logger: logger}
}

// Programs returns the program lookup set offered by the form.
func (s *ReportFormService) Programs() []models.Program {
	return append([]models.Program(nil), models.Programs...)
}

// BuildPayload validates the form and encodes it as the multipart body the
// upstream expects. A nil proof is omitted, or rejected when proofRequired.
func (s *ReportFormService) BuildPayload(form dto.ReportForm, proof *ProofFile, proofRequired bool) (reportapi.Multipart, map[string]string, error) {
	form, date, fields, err := s.checkForm(form)
	if err != nil {
		return reportapi.Multipart{}, fields, err
	}
	if proof == nil && proofRequired {
		return reportapi.Multipart{}, map[string]string{"proof": models.MsgProofRequired}, appErrors.Clone(appErrors.ErrValidation, models.MsgProofRequired)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	values := [][2]string{
		{"programId", strconv.FormatInt(*form.ProgramID, 10)},
		{"recipientCount", strconv.FormatInt(*form.RecipientCount, 10)},
		{"region", form.Region},
		{"distributionDate", date.String()},
		{"note", form.Note},
	}
	for _, kv := range values {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return reportapi.Multipart{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode report form")
		}
	}
	if proof != nil {
		if err := s.writeProof(w, proof); err != nil {
			return reportapi.Multipart{}, map[string]string{"proof": err.Error()}, err
		}
	}
	if err := w.Close(); err != nil {
		return reportapi.Multipart{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode report form")
	}
	return reportapi.Multipart{Body: buf.Bytes(), ContentType: w.FormDataContentType()}, nil, nil
}

// checkForm trims and validates the text fields and parses the distribution date.
// It never touches the proof or the network.
func (s *ReportFormService) checkForm(form dto.ReportForm) (dto.ReportForm, models.Date, map[string]string, error) {
	form.Region = strings.TrimSpace(form.Region)
	form.DistributionDate = strings.TrimSpace(form.DistributionDate)
	form.Note = strings.TrimSpace(form.Note)

	if fields := s.validateForm(form); len(fields) > 0 {
		return form, models.Date{}, fields, appErrors.Clone(appErrors.ErrValidation, "report form is incomplete")
	}
	date, err := models.ParseDate(form.DistributionDate)
	if err != nil {
		return form, models.Date{}, map[string]string{"distributionDate": err.Error()}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return form, date, nil, nil
}

// Create submits a new report. A proof document is mandatory.
func (s *ReportFormService) Create(ctx context.Context, form dto.ReportForm, proof *ProofFile) (*SubmitResult, error) {
	payload, fields, err := s.BuildPayload(form, proof, true)
	if err != nil {
		return s.rejected(fields, err), err
	}
	report, err := s.store.Create(ctx, payload)
	if err != nil {
		s.logger.Error("failed to create report", zap.Error(err))
		return &SubmitResult{Notification: models.Failure(models.MsgSubmitFailed)}, err
	}
	s.logger.Info("report created", zap.Int64("report_id", report.ID))
	return &SubmitResult{Report: report, Notification: models.Success(models.MsgCreateSuccess), Redirect: ReportsPath}, nil
}

// LoadForEdit fetches a report and maps it onto the edit form.
func (s *ReportFormService) LoadForEdit(ctx context.Context, id int64) (*dto.EditFormState, error) {
	report, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.Error("failed to load report for edit", zap.Int64("report_id", id), zap.Error(err))
		return nil, err
	}
	state := dto.NewEditFormState(*report, s.store.ProofURL(report.Proof))
	return &state, nil
}

// Update resubmits an existing report. A new proof is only required when the
// stored record has none.
func (s *ReportFormService) Update(ctx context.Context, id int64, form dto.ReportForm, proof *ProofFile) (*SubmitResult, error) {
	if _, _, fields, err := s.checkForm(form); err != nil {
		return s.rejected(fields, err), err
	}

	proofRequired := false
	if proof == nil {
		existing, err := s.store.Get(ctx, id)
		if err != nil {
			s.logger.Error("failed to load report before update", zap.Int64("report_id", id), zap.Error(err))
			return &SubmitResult{Notification: models.Failure(models.MsgLoadFailed)}, err
		}
		proofRequired = existing.Proof == ""
	}

	payload, fields, err := s.BuildPayload(form, proof, proofRequired)
	if err != nil {
		return s.rejected(fields, err), err
	}
	report, err := s.store.Update(ctx, id, payload)
	if err != nil {
		s.logger.Error("failed to update report", zap.Int64("report_id", id), zap.Error(err))
		return &SubmitResult{Notification: models.Failure(models.MsgSubmitFailed)}, err
	}
	s.logger.Info("report updated", zap.Int64("report_id", id))
	return &SubmitResult{Report: report, Notification: models.Success(models.MsgUpdateSuccess), Redirect: ReportsPath}, nil
}

// ProofURL resolves a stored proof path against the API origin.
func (s *ReportFormService) ProofURL(proof string) string {
	return s.store.ProofURL(proof)
}

// CheckProofName validates the extension of a selected proof file.
func (s *ReportFormService) CheckProofName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range s.policy.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return appErrors.Invalid("file bukti harus berformat %s", strings.Join(s.policy.AllowedExtensions, ", "))
}

func (s *ReportFormService) writeProof(w *multipart.Writer, proof *ProofFile) error {
	name := filepath.Base(proof.Filename)
	if err := s.CheckProofName(name); err != nil {
		return err
	}
	if proof.Content == nil {
		return appErrors.Clone(appErrors.ErrValidation, models.MsgProofRequired)
	}
	data, err := io.ReadAll(io.LimitReader(proof.Content, s.policy.MaxBytes+1))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read proof file")
	}
	if int64(len(data)) > s.policy.MaxBytes {
		return appErrors.Invalid("file bukti melebihi %d byte", s.policy.MaxBytes)
	}

	contentType := proof.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="proof"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode proof file")
	}
	if _, err := part.Write(data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode proof file")
	}
	return nil
}

func (s *ReportFormService) validateForm(form dto.ReportForm) map[string]string {
	err := s.validator.Struct(form)
	if err == nil {
		if _, ok := models.ProgramByID(*form.ProgramID); !ok {
			return map[string]string{"programId": "program tidak dikenal"}
		}
		return nil
	}
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["form"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = MsgFieldRequired
		case "gte":
			fields[fe.Field()] = "tidak boleh negatif"
		default:
			fields[fe.Field()] = fe.Error()
		}
	}
	return fields
}

func (s *ReportFormService) rejected(fields map[string]string, err error) *SubmitResult {
	message := models.MsgSubmitFailed
	if errors.Is(err, appErrors.ErrValidation) {
		message = appErrors.FromError(err).Message
	}
	return &SubmitResult{Notification: models.Failure(message), FieldErrors: fields}
}
