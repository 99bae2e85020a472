package shared

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks a DTO against its struct tags. Handlers call this before
// passing commands into services, so service code can assume valid input.
func Validate(v any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(v); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("%w: field %s failed on %s", httpx.ErrValidation, first.Field(), first.Tag())
		}
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return nil
}
