package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/apierr"
)

type APIError struct {
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	IDs     []uuid.UUID `json:"ids,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondDomainError translates the engine's error taxonomy into HTTP. Every
// rejection carries its rule code and the offending ids so the UI can explain
// the problem instead of showing a generic failure.
func RespondDomainError(c *gin.Context, err error) {
	e, ok := apierr.As(err)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	c.JSON(domainStatus(e), ErrorEnvelope{
		Error: APIError{
			Message: e.Error(),
			Code:    e.Code,
			Kind:    string(e.Kind),
			IDs:     e.IDs,
		},
	})
}

func domainStatus(e *apierr.Error) int {
	switch e.Kind {
	case apierr.KindValidation, apierr.KindStructural, apierr.KindDependencyBlocked:
		return http.StatusBadRequest
	case apierr.KindReferential:
		return http.StatusNotFound
	case apierr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
