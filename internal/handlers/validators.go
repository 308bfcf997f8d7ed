package handlers

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// RegisterValidators teaches gin's validator about money: decimal.Decimal fields compare as
// numbers under gt/gte/lte, and the currency tag accepts ISO 4217 codes.
func RegisterValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		validatorsErr = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return utils.IsValidCurrency(fl.Field().String())
		})
	})
	return validatorsErr
}

func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}
