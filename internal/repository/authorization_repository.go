package repository

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/models"
)

// AuthorizationRepository is the durable mirror of the consumed-digest
// set.
type AuthorizationRepository interface {
	LoadConsumed(ctx context.Context) ([]common.Hash, error)
	MarkConsumed(ctx context.Context, record *models.ConsumedAuthorization) error
	// Release removes a digest whose withdrawal rolled back. It is the
	// only delete path; consumed entries of completed operations are
	// never removed.
	Release(ctx context.Context, digest string) error
	List(ctx context.Context, page, pageSize int) ([]models.ConsumedAuthorization, int64, error)
}

type authorizationRepository struct {
	db *gorm.DB
}

// NewAuthorizationRepository creates a gorm-backed
// AuthorizationRepository.
func NewAuthorizationRepository(db *gorm.DB) AuthorizationRepository {
	return &authorizationRepository{db: db}
}

// LoadConsumed returns every consumed digest, for seeding the in-memory
// set at startup.
func (r *authorizationRepository) LoadConsumed(ctx context.Context) ([]common.Hash, error) {
	var digests []string
	if err := r.db.WithContext(ctx).
		Model(&models.ConsumedAuthorization{}).
		Pluck("digest", &digests).Error; err != nil {
		return nil, err
	}
	out := make([]common.Hash, 0, len(digests))
	for _, d := range digests {
		out = append(out, common.HexToHash(d))
	}
	return out, nil
}

// MarkConsumed inserts the consumed record. The unique index on digest
// backs up the in-memory replay check.
func (r *authorizationRepository) MarkConsumed(ctx context.Context, record *models.ConsumedAuthorization) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "digest"}}, DoNothing: true}).
		Create(record).Error
}

func (r *authorizationRepository) Release(ctx context.Context, digest string) error {
	return r.db.WithContext(ctx).
		Where("digest = ?", digest).
		Delete(&models.ConsumedAuthorization{}).Error
}

// List returns consumed authorizations newest first, paginated.
func (r *authorizationRepository) List(ctx context.Context, page, pageSize int) ([]models.ConsumedAuthorization, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ConsumedAuthorization{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.ConsumedAuthorization
	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
