package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/formfill-backend/internal/generate"
	"github.com/stemsi/formfill-backend/internal/middleware"
	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/response"
	"github.com/stemsi/formfill-backend/internal/scrape"
	"github.com/stemsi/formfill-backend/internal/service"
	"github.com/stemsi/formfill-backend/internal/validator"
)

// FormHandler handles form parsing and answering endpoints.
type FormHandler struct {
	formService *service.FormService
	log         zerolog.Logger
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(formService *service.FormService, log zerolog.Logger) *FormHandler {
	return &FormHandler{
		formService: formService,
		log:         log.With().Str("component", "form_handler").Logger(),
	}
}

// ScrapeForm godoc
// POST /api/v1/forms/scrape
// Renders a form URL and returns its title and questions.
func (h *FormHandler) ScrapeForm(c *gin.Context) {
	var req model.ScrapeFormRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	form, err := h.formService.ScrapeForm(c.Request.Context(), req.URL)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondForm(c, form)
}

// ParseText godoc
// POST /api/v1/forms/parse
// Extracts questions from already-scraped markdown or plain text.
func (h *FormHandler) ParseText(c *gin.Context) {
	var req model.ParseTextRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respondForm(c, h.formService.ParseText(req.Text, req.HTML))
}

// ParseManual godoc
// POST /api/v1/forms/manual
// Extracts questions from a pasted, numbered quiz.
func (h *FormHandler) ParseManual(c *gin.Context) {
	var req model.ManualParseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respondForm(c, &model.ParsedForm{Questions: h.formService.ParseManual(req.Text)})
}

// Answer godoc
// POST /api/v1/forms/answers
// Drafts, reconciles and optionally misses answers for a question list.
func (h *FormHandler) Answer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.AnswerFormRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.formService.Answer(c.Request.Context(), claims.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *FormHandler) respondForm(c *gin.Context, form *model.ParsedForm) {
	if len(form.Questions) == 0 {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestionsDetected)
		return
	}
	response.Success(c, http.StatusOK, form)
}

// fail maps collaborator errors onto distinct API error codes.
func (h *FormHandler) fail(c *gin.Context, err error) {
	var apiErr *scrape.APIError
	switch {
	case errors.Is(err, generate.ErrRateLimited):
		response.Fail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
	case errors.Is(err, generate.ErrQuotaExhausted):
		response.Fail(c, http.StatusPaymentRequired, response.ErrAICreditsExhausted)
	case errors.Is(err, generate.ErrNotConfigured):
		response.Fail(c, http.StatusInternalServerError, response.ErrAINotConfigured)
	case errors.Is(err, scrape.ErrNotConfigured):
		response.Fail(c, http.StatusInternalServerError, response.ErrScraperNotConfigured)
	case errors.As(err, &apiErr):
		h.log.Warn().Err(err).Str("request_id", response.RequestID(c)).Msg("Scrape failed")
		response.Fail(c, http.StatusBadGateway, response.ErrScrapeFailed)
	case errors.Is(err, service.ErrDuplicateQuestionID):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"questions": err.Error(),
		})
	case errors.Is(err, generate.ErrEmptyResponse), errors.Is(err, context.DeadlineExceeded):
		h.log.Warn().Err(err).Str("request_id", response.RequestID(c)).Msg("Generation failed")
		response.Fail(c, http.StatusBadGateway, response.ErrAIResponseFailed)
	default:
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Form request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
