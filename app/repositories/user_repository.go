package repositories

import (
	"context"
	"errors"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository keeps user profiles under user:<id>.
type BadgerUserRepository struct {
	db *badger.DB
}

func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// GetByIDs returns the profiles it finds; unknown ids are simply absent.
func (r *BadgerUserRepository) GetByIDs(ctx context.Context, ids []models.Identity) (map[models.Identity]*models.User, error) {
	users := make(map[models.Identity]*models.User)
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range UniqueIdentities(ids) {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get(userKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var user models.User
			if err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &user)
			}); err != nil {
				return err
			}
			users[id] = &user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *BadgerUserRepository) Upsert(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := marshalEntity(user)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), data)
	})
}
