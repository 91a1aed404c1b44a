package payload

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Decimals are compared as floats so numeric tags like gt=0 apply to them.
		validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// Validate checks a record's struct tags. It returns "" for a valid record,
// otherwise a short reason such as "email: required".
func Validate(record any) string {
	err := validatorInstance().Struct(record)
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reason := jsonName(record, fe.StructField()) + ": " + fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		reasons = append(reasons, reason)
	}
	return strings.Join(reasons, ", ")
}

func jsonName(record any, field string) string {
	t := reflect.TypeOf(record)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if sf, ok := t.FieldByName(field); ok {
		if tag := strings.Split(sf.Tag.Get("json"), ",")[0]; tag != "" {
			return tag
		}
	}
	return field
}
