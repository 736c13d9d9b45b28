package dto

import (
	"html"
	"reflect"
	"strings"

	"digital-wallet/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("wallet_currency", validateCurrency)
		_ = v.RegisterValidation("opposite_party_type", validateOppositePartyType)
	}
}

// validateCurrency restricts currency codes to the supported set.
func validateCurrency(fl validator.FieldLevel) bool {
	switch domain.Currency(fl.Field().String()) {
	case domain.CurrencyTRY, domain.CurrencyUSD, domain.CurrencyEUR:
		return true
	}
	return false
}

// validateOppositePartyType accepts the IBAN and PAYMENT party kinds.
func validateOppositePartyType(fl validator.FieldLevel) bool {
	switch domain.OppositePartyType(fl.Field().String()) {
	case domain.OppositePartyTypeIBAN, domain.OppositePartyTypePayment:
		return true
	}
	return false
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
