package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/alert"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/drug"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/theatre"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/token"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/auth"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// conflicts are requests that collide with an existing record.
var conflicts = []error{
	domain.ErrUsernameTaken,
	department.ErrNameTaken,
	staff.ErrProfileExists,
	patient.ErrPatientAlreadyExists,
	token.ErrNumberTaken,
}

// rejections are domain rules the request broke; the caller can fix them.
var rejections = []error{
	appointment.ErrInvalidStatusTransition,
	appointment.ErrAlreadyCompleted,
	appointment.ErrAlreadyCancelled,
	appointment.ErrDoctorNotInDepartment,
	appointment.ErrDateRequired,
	department.ErrDepartmentInactive,
	department.ErrNameRequired,
	token.ErrInvalidStatus,
	token.ErrInvalidStatusTransition,
	token.ErrNotWaiting,
	token.ErrNotCalled,
	token.ErrNotServing,
	token.ErrNumberMismatch,
	token.ErrNumberSpaceExhausted,
	prescription.ErrNoMedications,
	prescription.ErrAlreadyDispensed,
	patient.ErrInvalidGender,
	patient.ErrInvalidBloodGroup,
	patient.ErrInvalidDateOfBirth,
	staff.ErrInvalidShift,
	staff.ErrInvalidPosition,
	drug.ErrNegativeQuantity,
	drug.ErrNegativePrice,
	drug.ErrInsufficientStock,
	theatre.ErrTheatreUnavailable,
	theatre.ErrInvalidDuration,
	theatre.ErrInvalidStatusTransition,
	alert.ErrInvalidType,
	alert.ErrLocationRequired,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondServiceError is the single place service errors become HTTP
// responses. Unknown errors are attached to the context for the request
// logger and answered with a bare 500.
func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, access.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenTypeMismatch):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})

	case errors.Is(err, access.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "ACCOUNT_INACTIVE"})

	case store.IsNotFound(err), errors.Is(err, token.ErrNoWaitingTokens):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case isAny(err, conflicts):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case isAny(err, rejections):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func principal(c *gin.Context) *access.Principal {
	return access.PrincipalFrom(c.Request.Context())
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+param+": must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryID reads an optional positive integer query parameter. A present but
// malformed value is answered with 400 and ok is false.
func queryID(c *gin.Context, key string) (id *int64, ok bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+key+": must be a positive integer")
		return nil, false
	}
	return &v, true
}

func queryBool(c *gin.Context, key string) (b *bool, ok bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+key+": must be true or false")
		return nil, false
	}
	return &v, true
}

// queryDay reads ?date=YYYY-MM-DD, defaulting to today.
func queryDay(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date: must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

// Timestamp accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if v, err := time.Parse(layout, raw); err == nil {
			t.Time = v
			return nil
		}
	}
	return errors.New("timestamp must be RFC 3339 or YYYY-MM-DD")
}

// timePtr unwraps an optional Timestamp.
func timePtr(t *Timestamp) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
