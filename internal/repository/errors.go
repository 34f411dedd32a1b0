package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
	"github.com/ExpertosTI/presta-pro-sub000/pkg/utils"
)

// mapError translates driver errors into business errors for the entity kind and id.
func mapError(err error, kind, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapNotFound(kind, id)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return customError.WrapAlreadyExists(kind, id)
		case "foreign_key_violation":
			return customError.NewBusinessError(
				customError.ErrCodeNotFound,
				fmt.Sprintf("%s %s references a missing record (%s)", kind, id, pqErr.Constraint),
				customError.ErrNotFound,
			)
		}
	}

	return customError.WrapDatabaseError(err)
}

// dayBounds returns [start, end) of day's calendar day in its own location.
func dayBounds(day time.Time) (time.Time, time.Time) {
	start := utils.StartOfDay(day)
	return start, start.AddDate(0, 0, 1)
}
