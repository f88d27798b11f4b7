// Package validation checks issuance parameters before any external effect.
package validation

import (
	"errors"
	"fmt"
	"math/bits"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Limits enforced on issuance parameters. Lengths are in bytes, matching the
// metadata registry's record layout.
const (
	MaxNameBytes   = 32
	MaxSymbolBytes = 10
	MaxURIBytes    = 200
	MaxDecimals    = 18
)

// Input is the validated subset of an issuance request.
type Input struct {
	Name          string `validate:"required,maxbytes=32"`
	Symbol        string `validate:"required,maxbytes=10"`
	URI           string `validate:"required,maxbytes=200"`
	Decimals      uint8  `validate:"lte=18"`
	InitialSupply uint64 `validate:"gt=0"`
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the custom tags registered.
func New() (*Validator, error) {
	v := validator.New()

	err := v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			panic(fmt.Errorf("%q is not a string", fl.FieldName()))
		}
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			panic(fmt.Errorf("maxbytes on %q: bad limit %q", fl.FieldName(), fl.Param()))
		}
		return len(fl.Field().String()) <= limit
	})
	if err != nil {
		return nil, fmt.Errorf("register maxbytes: %w", err)
	}

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(Input)
		if in.InitialSupply == 0 || in.Decimals > MaxDecimals {
			return // reported by field tags
		}
		if _, err := ScaleSupply(in.InitialSupply, in.Decimals); err != nil {
			sl.ReportError(in.InitialSupply, "InitialSupply", "InitialSupply", "nooverflow", "")
		}
	}, Input{})

	return &Validator{v: v}, nil
}

// MustNew is New for package initialisation.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate returns the first violated constraint as one of the package errors.
func (val *Validator) Validate(in Input) error {
	err := val.v.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate input: %w", err)
	}

	fe := fieldErrs[0]
	return fmt.Errorf("%w: %s failed %q (value %v)", fieldError(fe.StructField()), fe.StructField(), fe.Tag(), describe(fe.Value()))
}

func fieldError(field string) error {
	switch field {
	case "Name":
		return ErrInvalidTokenName
	case "Symbol":
		return ErrInvalidTokenSymbol
	case "URI":
		return ErrInvalidUri
	case "Decimals":
		return ErrInvalidDecimals
	default:
		return ErrInvalidInitialSupply
	}
}

func describe(v interface{}) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%d bytes", len(s))
	}
	return fmt.Sprint(v)
}

// ScaleSupply returns supply * 10^decimals, failing on uint64 overflow.
func ScaleSupply(supply uint64, decimals uint8) (uint64, error) {
	pow := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		hi, lo := bits.Mul64(pow, 10)
		if hi != 0 {
			return 0, fmt.Errorf("%w: 10^%d overflows", ErrInvalidInitialSupply, decimals)
		}
		pow = lo
	}

	hi, amount := bits.Mul64(supply, pow)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d * 10^%d overflows", ErrInvalidInitialSupply, supply, decimals)
	}
	return amount, nil
}
