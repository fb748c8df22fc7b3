package domain

import (
	"regexp"
	"sort"
	"strings"
)

// Request and response bodies for the passwordless auth endpoints. The
// wire shape is camelCase to match the web client.

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type RequestCodeResponse struct {
	Message string `json:"message"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyCodeResponse struct {
	Token     string    `json:"token"`
	IsNewUser bool      `json:"isNewUser"`
	User      *UserInfo `json:"user,omitempty"`
}

type CompleteRegistrationRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	TeamName    string `json:"teamName"`
}

type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
	Team  *TeamInfo `json:"team"`
}

// User-facing messages. Titles are stable so clients can match on them.
const (
	VerificationCodeSentMessage = "Verification code sent to your email"

	InvalidEmailMessage          = "Please provide a valid email address"
	InvalidOrExpiredCodeMessage  = "The verification code is invalid or has expired"
	NoTeamMembershipMessage      = "User has no team membership"
	UserAlreadyExistsMessage     = "An account with this email already exists"
	TooManyRequestsMessage       = "You've requested too many codes. Please try again later."
	DisplayNameRequiredMessage   = "Display name is required"
	DisplayNameLengthMessage     = "Display name must be between 2 and 100 characters"
	TeamNameRequiredMessage      = "Team name is required"
	TeamNameLengthMessage        = "Team name must be between 2 and 100 characters"
)

const (
	NameMinLength = 2
	NameMaxLength = 100
)

// FieldErrors maps a request field to its validation message. It
// satisfies error so validation can flow through the usual error path
// and be unpacked at the HTTP boundary.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	codeRe  = regexp.MustCompile(`^[0-9]{6}$`)
)

func validateEmail(errs FieldErrors, email string) {
	if email == "" || !emailRe.MatchString(email) {
		errs["email"] = InvalidEmailMessage
	}
}

func validateCode(errs FieldErrors, code string) {
	if !codeRe.MatchString(code) {
		errs["code"] = InvalidOrExpiredCodeMessage
	}
}

func validateName(errs FieldErrors, field, value, requiredMsg, lengthMsg string) {
	if value == "" {
		errs[field] = requiredMsg
		return
	}
	if n := len([]rune(value)); n < NameMinLength || n > NameMaxLength {
		errs[field] = lengthMsg
	}
}

func (r *RequestCodeRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *RequestCodeRequest) Validate() error {
	errs := FieldErrors{}
	validateEmail(errs, r.Email)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *VerifyCodeRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Code = strings.TrimSpace(r.Code)
}

func (r *VerifyCodeRequest) Validate() error {
	errs := FieldErrors{}
	validateEmail(errs, r.Email)
	validateCode(errs, r.Code)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CompleteRegistrationRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Code = strings.TrimSpace(r.Code)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.TeamName = strings.TrimSpace(r.TeamName)
}

func (r *CompleteRegistrationRequest) Validate() error {
	errs := FieldErrors{}
	validateEmail(errs, r.Email)
	validateCode(errs, r.Code)
	validateName(errs, "displayName", r.DisplayName, DisplayNameRequiredMessage, DisplayNameLengthMessage)
	validateName(errs, "teamName", r.TeamName, TeamNameRequiredMessage, TeamNameLengthMessage)
	if len(errs) > 0 {
		return errs
	}
	return nil
}
