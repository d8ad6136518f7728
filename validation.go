package logging

import (
	stderrs "errors"
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func validateOptions(cfg *options) error {
	const op errors.Op = "logging.validateOptions"
	if cfg == nil {
		return configError(op, ErrInvalidConfig, errMsgConfigInvalid)
	}

	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if err := validate.Struct(cfg); err != nil {
		return configError(op, stderrs.Join(ErrInvalidConfig, err), errMsgConfigInvalid)
	}

	return nil
}
