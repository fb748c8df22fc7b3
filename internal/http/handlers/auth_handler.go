package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diagnosis/teamtodo/internal/domain"
	mw "github.com/diagnosis/teamtodo/internal/http/middleware"
	"github.com/diagnosis/teamtodo/internal/http/response"
	"github.com/diagnosis/teamtodo/internal/platform/auth"
	"github.com/diagnosis/teamtodo/internal/service"
	"github.com/diagnosis/teamtodo/pkg/logger"
)

type AuthHandler struct {
	auth   service.AuthService
	issuer *auth.Issuer
}

func NewAuthHandler(authService service.AuthService, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{auth: authService, issuer: issuer}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/request-code", h.requestCode)
	r.Post("/verify-code", h.verifyCode)
	r.Post("/complete-registration", h.completeRegistration)
	r.With(mw.RequireJWT(h.issuer)).Get("/me", h.me)
	return r
}

func (h *AuthHandler) requestCode(w http.ResponseWriter, r *http.Request) {
	var req domain.RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteProblem(w, http.StatusBadRequest, response.TitleValidation, "Invalid JSON body")
		return
	}

	resp, err := h.auth.RequestCode(r.Context(), &req)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteProblem(w, http.StatusBadRequest, response.TitleValidation, "Invalid JSON body")
		return
	}

	resp, err := h.auth.VerifyCode(r.Context(), &req)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) completeRegistration(w http.ResponseWriter, r *http.Request) {
	var req domain.CompleteRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteProblem(w, http.StatusBadRequest, response.TitleValidation, "Invalid JSON body")
		return
	}

	resp, err := h.auth.CompleteRegistration(r.Context(), &req)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		response.WriteProblem(w, http.StatusUnauthorized, response.TitleUnauthorized, "Invalid authorization token")
		return
	}

	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	if user == nil {
		response.WriteProblem(w, http.StatusUnauthorized, response.TitleUnauthorized, "Unknown user")
		return
	}

	response.WriteJSON(w, http.StatusOK, user.ToUserInfo())
}

// writeAuthError translates domain failures into problem-details
// responses. Anything unrecognized is a 500 with no internal detail.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs domain.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		response.WriteValidationProblem(w, fieldErrs)
	case errors.Is(err, service.ErrRateLimited):
		response.WriteProblem(w, http.StatusTooManyRequests, response.TitleTooManyRequests, domain.TooManyRequestsMessage)
	case errors.Is(err, service.ErrInvalidCode):
		response.WriteProblem(w, http.StatusBadRequest, response.TitleInvalidCode, domain.InvalidOrExpiredCodeMessage)
	case errors.Is(err, service.ErrNoTeam):
		response.WriteProblem(w, http.StatusBadRequest, response.TitleNoTeamFound, domain.NoTeamMembershipMessage)
	case errors.Is(err, service.ErrUserExists):
		response.WriteProblem(w, http.StatusBadRequest, response.TitleUserExists, domain.UserAlreadyExistsMessage)
	default:
		logger.ErrorContext(r.Context(), "Auth request failed", "error", err)
		response.WriteProblem(w, http.StatusInternalServerError, response.TitleInternal, "Something went wrong")
	}
}
