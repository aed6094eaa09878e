package repositories

import (
	"context"

	"github.com/examforge/exam-service/internal/models"
)

// UserRepository is read-only; user data is owned by the identity
// provider.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
