package response

import (
	"encoding/json"
	"net/http"

	"github.com/diagnosis/teamtodo/pkg/logger"
)

// Problem is the error body for every failure response: a stable,
// machine-matchable title plus a human-readable detail.
type Problem struct {
	Title  string            `json:"title"`
	Detail string            `json:"detail"`
	Status int               `json:"status"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Stable problem titles.
const (
	TitleValidation      = "One or more validation errors occurred"
	TitleInvalidEmail    = "Invalid email"
	TitleTooManyRequests = "Too many requests"
	TitleInvalidCode     = "Invalid code"
	TitleNoTeamFound     = "No team found"
	TitleUserExists      = "User exists"
	TitleUnauthorized    = "Unauthorized"
	TitleInternal        = "Internal server error"
)

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func WriteProblem(w http.ResponseWriter, statusCode int, title, detail string) {
	WriteJSON(w, statusCode, Problem{
		Title:  title,
		Detail: detail,
		Status: statusCode,
	})
}

// WriteValidationProblem reports field-scoped validation messages.
func WriteValidationProblem(w http.ResponseWriter, errs map[string]string) {
	WriteJSON(w, http.StatusBadRequest, Problem{
		Title:  TitleValidation,
		Detail: "The request body failed validation",
		Status: http.StatusBadRequest,
		Errors: errs,
	})
}
