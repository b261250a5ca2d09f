package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/sistema-ventas/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores se reportan con el nombre del campo del formulario.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// validatePayload valida el payload con sus tags. Si missing no es nil y falta un campo
// obligatorio se devuelve missing; el resto de fallas se juntan en un domain.ValidationError.
func validatePayload(payload any, missing error) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if missing != nil && fe.Tag() == "required" {
			return missing
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "no es un correo válido"
	case "numeric":
		return "debe ser un número"
	case "max":
		return "supera el largo máximo de " + fe.Param()
	case "min":
		return "debe ser al menos " + fe.Param()
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	default:
		return "no es válido"
	}
}
