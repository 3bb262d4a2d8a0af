package rest

import (
	"errors"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	pkgError "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/error"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
)

// httpError maps service errors onto the typed errors Recovery renders.
func httpError(err error) error {
	if err == nil {
		return nil
	}
	var generic pkgError.GenericError
	if errors.As(err, &generic) {
		return generic
	}
	switch {
	case errors.Is(err, domain.ErrAutomationNotFound),
		errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrCredentialNotFound):
		return pkgError.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCycleInProgress):
		return pkgError.ConflictError(err.Error())
	case errors.Is(err, domain.ErrMissingTenant):
		return pkgError.ValidationError(err.Error())
	}
	return pkgError.InternalServerError(err.Error())
}

func panicIfError(err error) {
	if err != nil {
		utils.PanicIfNeeded(httpError(err))
	}
}
