package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/diagnosis/shelter-loyalty/pkg/auth"
	"github.com/diagnosis/shelter-loyalty/pkg/config"
	"github.com/diagnosis/shelter-loyalty/pkg/logger"
	"github.com/diagnosis/shelter-loyalty/pkg/metrics"
	"github.com/diagnosis/shelter-loyalty/pkg/response"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/domain"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/normalize"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/repository"
	"github.com/diagnosis/shelter-loyalty/services/loyalty/internal/service"
)

const (
	StaffPasswordHeader = "X-Staff-Password"
	passwordField       = "password"
)

var (
	errInvalidSession = errors.New("invalid or expired session")
	errBodyTooLarge   = errors.New("request body too large")
	errMalformedBody  = errors.New("request body must be a JSON object or form data")
)

// PasswordVerifier is satisfied by *auth.PasswordChecker.
type PasswordVerifier interface {
	Verify(ctx context.Context, candidate string) error
	Disabled() bool
}

type Handlers struct {
	loyaltyService service.LoyaltyService
	passwords      PasswordVerifier
	config         *config.Config
}

func New(loyaltyService service.LoyaltyService, passwords PasswordVerifier, cfg *config.Config) *Handlers {
	return &Handlers{
		loyaltyService: loyaltyService,
		passwords:      passwords,
		config:         cfg,
	}
}

// authenticate accepts a staff session token, the staff password header or, when
// the route allows it, a password taken from the request body.
func (h *Handlers) authenticate(r *http.Request, bodyPassword string) error {
	ctx := r.Context()
	if h.passwords.Disabled() {
		return h.recordBypass(ctx)
	}

	if token, ok := bearerToken(r); ok {
		if _, err := auth.Parse(token, h.config.Auth.JWTSecret); err != nil {
			metrics.AuthAttempts.WithLabelValues("invalid_session").Inc()
			return errInvalidSession
		}
		metrics.AuthAttempts.WithLabelValues("session").Inc()
		return nil
	}

	password := r.Header.Get(StaffPasswordHeader)
	if password == "" {
		password = bodyPassword
	}
	return h.verifyPassword(ctx, password)
}

// recordBypass counts and audit-logs a request let through with authentication disabled.
func (h *Handlers) recordBypass(ctx context.Context) error {
	metrics.AuthAttempts.WithLabelValues("bypassed").Inc()
	return h.passwords.Verify(ctx, "")
}

func (h *Handlers) verifyPassword(ctx context.Context, password string) error {
	err := h.passwords.Verify(ctx, password)
	switch {
	case err == nil:
		metrics.AuthAttempts.WithLabelValues("success").Inc()
	case errors.Is(err, auth.ErrPasswordRequired):
		metrics.AuthAttempts.WithLabelValues("missing").Inc()
	default:
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		logger.WarnContext(ctx, "Staff password rejected")
	}
	return err
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

// decodePayload reads a JSON object or a urlencoded/multipart form into a Payload.
func decodePayload(r *http.Request) (normalize.Payload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" || mediaType == "" {
		var raw map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, errBodyTooLarge
			}
			return nil, errMalformedBody
		}
		return normalize.PayloadFromJSON(raw), nil
	}

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(1 << 20)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, errMalformedBody
	}
	return normalize.PayloadFromValues(r.PostForm), nil
}

func (h *Handlers) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrPasswordRequired):
		response.Invalid(w, err.Error(), []response.FieldError{{Field: passwordField, Message: err.Error()}})
	case errors.Is(err, auth.ErrInvalidPassword), errors.Is(err, errInvalidSession):
		response.Unauthorized(w, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, "internal error", response.CodeInternalError)
	}
}

func (h *Handlers) writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		response.WriteError(w, http.StatusRequestEntityTooLarge, err.Error(), response.CodeInvalidInput)
		return
	}
	response.BadRequest(w, err.Error())
}

// writeServiceError maps service failures to responses. Raw error text is only
// exposed in development.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		fields := make([]response.FieldError, 0, len(ve.Issues))
		for _, is := range ve.Issues {
			fields = append(fields, response.FieldError{Field: is.Field, Message: is.Message})
		}
		response.Invalid(w, ve.Message(), fields)
		return
	}

	logger.ErrorContext(r.Context(), fmt.Sprintf("Failed to %s", op), "error", err)

	status, message, code := http.StatusInternalServerError, "internal error", response.CodeInternalError
	if errors.Is(err, repository.ErrUnavailable) {
		status, message, code = http.StatusServiceUnavailable, "service temporarily unavailable", response.CodeUnavailable
	}
	if h.config.App.IsDevelopment() {
		response.WriteErrorWithDetails(w, status, message, code, err.Error())
		return
	}
	response.WriteError(w, status, message, code)
}
