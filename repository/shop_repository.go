package repository

import (
	"context"

	"github.com/Apostolos-Valiakos/AptApp/models"
)

// ShopRepository, shop (tenant) veritabanı işlemleri için interface.
// Shop yönetimi bu uygulamanın dışında yapılır — burada sadece
// provisioning ve lookup var.
type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	GetByID(ctx context.Context, id string) (*models.Shop, error)
}
