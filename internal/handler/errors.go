package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch ledger.Kind(err) {
	case ledger.ErrNotFound:
		return http.StatusNotFound
	case ledger.ErrInvalidOperation, ledger.ErrUnderageCustomer:
		return http.StatusUnprocessableEntity
	case ledger.ErrHasLinkedAccounts, ledger.ErrDuplicateIdentity:
		return http.StatusConflict
	case ledger.ErrInvalidArgument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondWithDomainError maps err onto a status and a stable code. Internal
// failures are logged and answered with fallback so no infrastructure detail
// leaks to the client.
func respondWithDomainError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		middleware.RespondWithError(c, status, ledger.Code(err), fallback)
		return
	}
	middleware.RespondWithError(c, status, ledger.Code(err), err.Error())
}

func respondInvalidBody(c *gin.Context) {
	middleware.RespondWithError(c, http.StatusBadRequest, "invalid_argument", "Invalid request body")
}

// pathID reads a positive numeric path parameter and answers 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_argument", "Invalid "+name)
		return 0, false
	}
	return id, true
}
