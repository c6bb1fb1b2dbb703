// Package httpx provides HTTP response utilities.
package httpx

import (
	"net/http"

	"github.com/stockroom/stockroom/internal/shared"
)

// RespondError maps domain error categories to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch shared.CategoryOf(err) {
	case shared.CategoryValidation:
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case shared.CategoryNotFound:
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case shared.CategoryInactive:
		Problem(w, http.StatusUnprocessableEntity, "Inactive", err.Error())
	case shared.CategoryInsufficientStock:
		Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case shared.CategoryReferentialIntegrity:
		Problem(w, http.StatusConflict, "Referential Integrity", err.Error())
	case shared.CategoryConflict:
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
