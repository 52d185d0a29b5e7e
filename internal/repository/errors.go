package repository

import (
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nikolayk812/sweetshop/internal/domain"
)

const (
	numericValueOutOfRange = "22003"
	foreignKeyViolation    = "23503"
	checkViolation         = "23514"
)

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// toInt4 narrows a non-negative count to the int4 columns it is stored in.
func toInt4(name string, v int) (int32, error) {
	if v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s[%d] does not fit int4", domain.ErrInvalidRequest, name, v)
	}
	return int32(v), nil
}
