package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"kecdesk/internal/apierror"
	"kecdesk/internal/middleware"
	"kecdesk/internal/numbering"
	"kecdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal validates as a number so min/gt tags work on amounts.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs validator tags.
// Returns false after writing the error response; the caller must return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery binds query parameters (form tags, defaults included).
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as a bare 500.
func respondError(c *gin.Context, err error) {
	var (
		ve *numbering.ValidationError
		ce *service.ContentionError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{ve.Field: ve.Reason}))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, apierror.New(strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.WithCode(apierror.CodeNotFound, err.Error()))
	case errors.As(err, &ce):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, apierror.WithCode(apierror.CodeContention,
			"could not assign a unique "+ce.DocType+" number, please retry"))
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
