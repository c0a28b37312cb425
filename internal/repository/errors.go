package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotFound — запрошенная запись отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrSeatConflict — условный декремент мест не прошёл: на момент
	// обновления свободных мест уже меньше, чем запрошено.
	ErrSeatConflict = errors.New("not enough seats left")
)

// notFound переводит pgx.ErrNoRows в доменную ошибку ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
