package colorgallery

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "gallery.GO/core/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"param", "query", "json"} {
			if tag := strings.SplitN(f.Tag.Get(key), ",", 2)[0]; tag != "" && tag != "-" {
				return tag
			}
		}
		return f.Name
	})
	return v
}

type productRequest struct {
	ProductID uint   `param:"id" validate:"required,gt=0"`
	StoreID   uint16 `query:"store"`
}

// colorRequest repeats the product fields: echo's binder skips unexported
// embedded structs.
type colorRequest struct {
	ProductID uint   `param:"id" validate:"required,gt=0"`
	StoreID   uint16 `query:"store"`
	Value     string `param:"value" validate:"required,max=255"`
}

type runRequest struct {
	ProductID  uint  `param:"id" validate:"required,gt=0"`
	DryRun     bool  `json:"dry_run"`
	CleanFirst *bool `json:"clean_first"`
}

var binder = &echo.DefaultBinder{}

// bindProduct reads path and query parameters; the body is never consulted.
func bindProduct(c echo.Context, dest interface{}) error {
	if err := binder.BindPathParams(c, dest); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "invalid path parameter")
	}
	if err := binder.BindQueryParams(c, dest); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "invalid query parameter")
	}
	return check(dest)
}

// bindRun reads the product id and an optional JSON body.
func bindRun(c echo.Context, dest *runRequest) error {
	if err := binder.BindPathParams(c, dest); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "invalid path parameter")
	}
	if c.Request().ContentLength != 0 {
		if err := binder.BindBody(c, dest); err != nil {
			return apperrors.Wrap(apperrors.CodeValidation, err, "invalid request body")
		}
	}
	return check(dest)
}

func check(dest interface{}) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("%s %s", fe.Field(), message(fe)))
	}
	return apperrors.Wrap(apperrors.CodeValidation, err, "validation failed")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}

// fail renders err as {code, error} with the status its code maps to.
func fail(c echo.Context, err error) error {
	code := apperrors.CodeOf(err)
	meta := apperrors.MetadataFor(code)
	msg := meta.PublicMessage
	if e, ok := apperrors.As(err); ok && e.Message() != "" && code == apperrors.CodeValidation {
		msg = e.Message()
	}
	return c.JSON(meta.HTTPStatus, echo.Map{"code": code, "error": msg})
}
