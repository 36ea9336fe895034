package service

import (
	"github.com/noah-isme/course-portal-api/pkg/database"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
)

// storeFailure classifies an unexpected repository error. Connection loss and
// deadline expiry become STORE_UNAVAILABLE, everything else INTERNAL_ERROR.
func storeFailure(err error, message string) error {
	if database.IsUnavailable(err) {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationFailure(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
