package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/user/storefront-go/apperror"
)

// WriteJSON serializes data to the response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError converts any error into the standard {"error": msg} body with the
// status code from the apperror taxonomy. Errors that are not *AppError are
// treated as internal and their detail is kept out of the response.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, appErr)
	}

	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
