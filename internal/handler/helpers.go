package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"lubripos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is validated as a float so tags like min=0 / gt=0 work.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON / query name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// validationError turns validator output into an apierror with one entry per
// failing field.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apierror.Validation(err.Error())
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return apierror.NewValidation(fields)
}

// bindAndValidate binds the JSON body and runs the validator tags. On failure
// the error is pushed to the context and false is returned; the caller must
// return without writing a response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(apierror.Validation("JSON inválido: " + err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		_ = c.Error(validationError(err))
		return false
	}
	return true
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		_ = c.Error(apierror.Validation("Parámetros inválidos: " + err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		_ = c.Error(validationError(err))
		return false
	}
	return true
}

// bindOptional binds an optional JSON body; an empty body is accepted.
func bindOptional(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindAndValidate(c, req)
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(apierror.Validation("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional uuid query parameter.
func queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		_ = c.Error(apierror.Validation("El parámetro " + name + " no es un ID válido"))
		return nil, false
	}
	return &id, true
}

func respond(c *gin.Context, status int, data interface{}, msg string) {
	c.JSON(status, apierror.OK(data, msg))
}

// fail pushes err for the ErrorHandler middleware.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func okStatus(c *gin.Context, data interface{}) { respond(c, http.StatusOK, data, "") }
