package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/bigbrew_pos/internal/repo"
	"github.com/Skotchmaster/bigbrew_pos/internal/service"
)

const msgSaveFailed = "could not save your order"

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrTotalMismatch),
		errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repo.ErrNoActor):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
