package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ValidationErrorDetail struct {
	Field    string      `json:"field"`
	Message  string      `json:"message"`
	Expected string      `json:"expected"`
	Received interface{} `json:"received"`
}

type ValidationErrorData struct {
	Errors []ValidationErrorDetail `json:"errors"`
}

// BindAndValidate binds the JSON body into obj. On failure it writes a 400
// with per-field details and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	c.JSON(http.StatusBadRequest, Response{
		Status:  http.StatusBadRequest,
		Message: "Invalid request parameters",
		Data:    ValidationErrorData{Errors: describeBindError(obj, err)},
	})
	return false
}

func describeBindError(obj interface{}, err error) []ValidationErrorDetail {
	var (
		validationErrs validator.ValidationErrors
		typeErr        *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &validationErrs):
		details := make([]ValidationErrorDetail, 0, len(validationErrs))
		for _, e := range validationErrs {
			field := jsonTagName(obj, e.StructField())
			detail := ValidationErrorDetail{
				Field:    field,
				Message:  fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", field, e.Tag()),
				Expected: e.Param(),
				Received: e.Value(),
			}
			if detail.Expected == "" {
				detail.Expected = e.Tag()
			}

			switch e.Tag() {
			case "required":
				detail.Message = fmt.Sprintf("Field '%s' is required", field)
				detail.Expected = "not null"
			case "email":
				detail.Message = fmt.Sprintf("Field '%s' must be a valid email address", field)
				detail.Expected = "email format"
			case "oneof":
				detail.Message = fmt.Sprintf("Field '%s' must be one of [%s]", field, e.Param())
			case "len":
				detail.Message = fmt.Sprintf("Field '%s' must be exactly %s characters long", field, e.Param())
			}
			details = append(details, detail)
		}
		return details

	case errors.As(err, &typeErr):
		return []ValidationErrorDetail{{
			Field:    typeErr.Field,
			Message:  fmt.Sprintf("Field '%s' has invalid type", typeErr.Field),
			Expected: typeErr.Type.String(),
			Received: typeErr.Value,
		}}

	default:
		return []ValidationErrorDetail{{
			Field:    "body",
			Message:  "Malformed JSON or invalid request body",
			Expected: "valid JSON",
			Received: err.Error(),
		}}
	}
}

func jsonTagName(obj interface{}, fieldName string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fieldName
	}
	if f, ok := t.FieldByName(fieldName); ok {
		if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
			for i := 0; i < len(tag); i++ {
				if tag[i] == ',' {
					return tag[:i]
				}
			}
			return tag
		}
	}
	return fieldName
}
