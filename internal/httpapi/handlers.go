package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/orchestrator"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/store"
	"github.com/goliatone/go-offerform/pkg/summary"
)

const messageUpstream = "The request could not be completed. Please try again."

type analysisRequest struct {
	Topic string `json:"topic" binding:"required"`
	Extra string `json:"extra"`
}

// draftView is the JSON shape of a saved draft.
type draftView struct {
	Email  string              `json:"email"`
	Count  int                 `json:"count"`
	Order  []string            `json:"order"`
	Values map[string]any      `json:"values"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getForm returns the form model for ?count=N and optional repeated
// ?order=ID parameters. ?renderer=NAME returns that renderer's output
// instead of the JSON model.
func (s *Server) getForm(c *gin.Context) {
	count := 0
	if raw := strings.TrimSpace(c.Query("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, ErrorTypeBadRequest, "count must be a whole number")
			return
		}
		count = n
	}
	var order []string
	if values := c.QueryArray("order"); len(values) > 0 {
		order = values
	}

	form, err := s.pipeline.Form(count, order)
	if err != nil {
		s.fail(c, err)
		return
	}

	if name := strings.TrimSpace(c.Query("renderer")); name != "" {
		out, contentType, err := s.pipeline.Render(c.Request.Context(), name, form, render.RenderOptions{})
		if err != nil {
			errorResponse(c, http.StatusBadRequest, ErrorTypeBadRequest, err.Error())
			return
		}
		c.Data(http.StatusOK, contentType, out)
		return
	}
	successResponse(c, http.StatusOK, "", form)
}

func (s *Server) postSubmission(c *gin.Context) {
	var req orchestrator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, ErrorTypeBadRequest, "invalid request body: "+err.Error())
		return
	}

	out, err := s.pipeline.Submit(c.Request.Context(), req)
	if err != nil {
		if out.Message != "" && !errors.Is(err, orchestrator.ErrPrecondition) {
			_ = c.Error(err)
			s.logger.Error("submission failed", "error", err)
			errorResponse(c, http.StatusBadGateway, ErrorTypeUpstream, out.Message)
			return
		}
		s.fail(c, err)
		return
	}
	if !out.OK {
		c.JSON(http.StatusUnprocessableEntity, APIResponse{
			Success: false,
			Data:    out,
			Error:   &ErrorInfo{Type: ErrorTypeValidation, Message: out.Message},
		})
		return
	}

	status := http.StatusOK
	if out.Operation == store.OutcomeInserted {
		status = http.StatusCreated
	}
	successResponse(c, status, out.Message, out)
}

func (s *Server) getSubmission(c *gin.Context) {
	email := c.Param("email")
	record, found, err := s.pipeline.Lookup(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !found {
		errorResponse(c, http.StatusNotFound, ErrorTypeNotFound, "no submission for "+email)
		return
	}
	successResponse(c, http.StatusOK, "", record)
}

func (s *Server) postSummary(c *gin.Context) {
	if s.summaries == nil {
		errorResponse(c, http.StatusNotImplemented, ErrorTypeNotImplemented, "text generation is not configured")
		return
	}
	email := c.Param("email")
	text, err := s.summaries.Summarize(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err)
		return
	}
	successResponse(c, http.StatusCreated, "", gin.H{"email": email, "summary": text})
}

func (s *Server) postAnalysis(c *gin.Context) {
	if s.summaries == nil {
		errorResponse(c, http.StatusNotImplemented, ErrorTypeNotImplemented, "text generation is not configured")
		return
	}
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, ErrorTypeBadRequest, "invalid request body: "+err.Error())
		return
	}
	analysis, err := s.summaries.Analyze(c.Request.Context(), c.Param("email"), req.Topic, req.Extra)
	if err != nil {
		s.fail(c, err)
		return
	}
	successResponse(c, http.StatusCreated, "", analysis)
}

// putDraft stores partial answers. Values that cannot be coerced are
// reported and left out of the draft.
func (s *Server) putDraft(c *gin.Context) {
	var req orchestrator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, ErrorTypeBadRequest, "invalid request body: "+err.Error())
		return
	}
	fs, invalid, err := s.pipeline.State(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	email := fs.String(fieldspec.KeyEmail)
	if strings.TrimSpace(email) == "" {
		errorResponse(c, http.StatusBadRequest, ErrorTypeBadRequest, "email is required to save a draft")
		return
	}
	if err := s.pipeline.SaveDraft(c.Request.Context(), fs); err != nil {
		s.fail(c, err)
		return
	}
	successResponse(c, http.StatusOK, "draft saved", draftView{
		Email:  email,
		Count:  fs.Count(),
		Order:  fs.Order(),
		Values: s.pipeline.Values(fs),
		Errors: invalid,
	})
}

func (s *Server) getDraft(c *gin.Context) {
	email := c.Param("email")
	fs, found, err := s.pipeline.LoadDraft(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !found {
		errorResponse(c, http.StatusNotFound, ErrorTypeNotFound, "no draft for "+email)
		return
	}
	successResponse(c, http.StatusOK, "", draftView{
		Email:  fs.String(fieldspec.KeyEmail),
		Count:  fs.Count(),
		Order:  fs.Order(),
		Values: s.pipeline.Values(fs),
	})
}

// fail maps pipeline errors to status codes. Errors that are not the
// caller's fault are reported as upstream failures without their details.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, orchestrator.ErrPrecondition), errors.Is(err, summary.ErrNoTopic):
		errorResponse(c, http.StatusBadRequest, ErrorTypeBadRequest, err.Error())
	case errors.Is(err, summary.ErrNoRecord):
		errorResponse(c, http.StatusNotFound, ErrorTypeNotFound, err.Error())
	default:
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		errorResponse(c, http.StatusBadGateway, ErrorTypeUpstream, messageUpstream)
	}
}
