package api

import (
	"errors"

	"github.com/schedcu/surgical-scheduler/internal/engine"
	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/repository"
)

func isNotFound(err error) bool {
	var nf *repository.NotFoundError
	return errors.As(err, &nf)
}

func isInvalidInput(err error) bool {
	var ii *entity.InvalidInputError
	var ve *repository.ValidationError
	return errors.As(err, &ii) || errors.As(err, &ve)
}

func isConflict(err error) bool {
	var ce *entity.ConflictError
	return errors.As(err, &ce)
}

func isBusy(err error) bool {
	return errors.Is(err, engine.ErrBusy)
}
