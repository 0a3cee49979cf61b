package repository

import (
	"errors"
	"fmt"

	"github.com/gamewallet/wallet/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors, keeping the original
// error in the chain for logging.
func MapGormErrorToDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", domain.ErrPersistenceConflict, err)
	default:
		return err
	}
}

// WrapError runs a GORM operation and maps its error.
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(&m).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
