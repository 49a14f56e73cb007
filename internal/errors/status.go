package errors

import "net/http"

// HTTPStatus maps an error code to the status both web surfaces return.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidInput, CodeValidationError, CodeInsufficientData, CodeDegenerateVariance:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
