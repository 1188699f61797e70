package mongodb

import (
	"errors"

	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

// translateError maps driver errors onto the repository sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(repositories.ErrDuplicate, err)
	default:
		return err
	}
}
