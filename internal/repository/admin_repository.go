package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/example/angagu/internal/models"
	"github.com/example/angagu/internal/utils"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetAdminByEmail returns every admin registered with email.
func (r *AdminRepository) GetAdminByEmail(ctx context.Context, email string) ([]models.Admin, error) {
	var admins []models.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", email).Limit(2).Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

// GetApproveList pages through products waiting for approval, oldest first.
func (r *AdminRepository) GetApproveList(ctx context.Context, pg utils.Pagination) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("approved = ?", false).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := query.
		Preload("Company").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("id asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ApproveProduct publishes a pending product.
func (r *AdminRepository) ApproveProduct(ctx context.Context, productID uint) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND approved = ?", productID, false).
		Updates(map[string]interface{}{"approved": true, "approved_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAdmin stores an operator account with an already hashed password.
func (r *AdminRepository) CreateAdmin(ctx context.Context, email, hash, name string) (uint, error) {
	admin := models.Admin{Email: email, Password: hash, Name: name}
	if err := r.db.WithContext(ctx).Create(&admin).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return admin.ID, nil
}
