package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/notebook-backend/internal/domain/aggregates"
)

var statusByCode = map[domainagg.ErrorCode]int{
	domainagg.CodeValidation:    http.StatusBadRequest,
	domainagg.CodeNotFound:      http.StatusNotFound,
	domainagg.CodeCycleRejected: http.StatusConflict,
	domainagg.CodeConflict:      http.StatusConflict,
	domainagg.CodeUnavailable:   http.StatusServiceUnavailable,
	domainagg.CodeInternal:      http.StatusInternalServerError,
}

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// RespondDomainError writes err using its aggregate code. Internal errors
// hide their message.
func RespondDomainError(c *gin.Context, err error) {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	status := StatusFor(code)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, string(domainagg.CodeInternal), errors.New("internal error"))
		return
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) && aggErr.Message != "" {
		err = errors.New(aggErr.Message)
	}
	RespondError(c, status, string(code), err)
}
