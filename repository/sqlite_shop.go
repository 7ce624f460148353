package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Apostolos-Valiakos/AptApp/database"
	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
)

// sqliteShopRepo, ShopRepository interface'inin SQLite implementasyonu.
type sqliteShopRepo struct {
	db database.TxQuerier
}

// NewSQLiteShopRepo, constructor.
func NewSQLiteShopRepo(db database.TxQuerier) ShopRepository {
	return &sqliteShopRepo{db: db}
}

func (r *sqliteShopRepo) Create(ctx context.Context, shop *models.Shop) error {
	if shop.ID == "" {
		shop.ID = uuid.NewString()
	}

	query := `
		INSERT INTO shops (id, name)
		VALUES (?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, shop.ID, shop.Name).Scan(&shop.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}

	return nil
}

func (r *sqliteShopRepo) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	query := `SELECT id, name, created_at FROM shops WHERE id = ?`

	shop := &models.Shop{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&shop.ID, &shop.Name, &shop.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop by id: %w", err)
	}

	return shop, nil
}
