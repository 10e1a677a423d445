package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/example/angagu/internal/models"
	"github.com/example/angagu/internal/utils"
)

// CompanyRepository serves the seller-facing endpoints.
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository constructs CompanyRepository.
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// CompanySignupInput is a seller registration with an already hashed password.
type CompanySignupInput struct {
	Email          string
	Password       string
	Name           string
	PhoneNumber    string
	BusinessNumber string
	AccountNumber  string
	AccountHolder  string
	AccountBank    string
}

// BusinessInfo holds the settlement account of a company.
type BusinessInfo struct {
	BusinessNumber string
	AccountNumber  string
	AccountHolder  string
	AccountBank    string
}

// SaleRow aggregates the paid lines of one product.
type SaleRow struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Amount    int    `json:"amount"`
}

// GetCompanyByEmail returns every company registered with email.
func (r *CompanyRepository) GetCompanyByEmail(ctx context.Context, email string) ([]models.Company, error) {
	var companies []models.Company
	if err := r.db.WithContext(ctx).Where("email = ?", email).Limit(2).Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// CompanySignup registers a seller.
func (r *CompanyRepository) CompanySignup(ctx context.Context, in CompanySignupInput) (uint, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("email = ? OR phone_number = ?", in.Email, in.PhoneNumber).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, ErrDuplicate
	}

	company := models.Company{
		Email:          in.Email,
		Password:       in.Password,
		Name:           in.Name,
		PhoneNumber:    in.PhoneNumber,
		BusinessNumber: in.BusinessNumber,
		AccountNumber:  in.AccountNumber,
		AccountHolder:  in.AccountHolder,
		AccountBank:    in.AccountBank,
	}
	if err := r.db.WithContext(ctx).Create(&company).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return company.ID, nil
}

// GetProducts lists every product of a company, approved or not.
func (r *CompanyRepository) GetProducts(ctx context.Context, companyID uint) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("company_id = ?", companyID).
		Order("id desc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// PostProduct stores a product pending approval together with its images.
func (r *CompanyRepository) PostProduct(ctx context.Context, product *models.Product) (uint, error) {
	product.Approved = false
	product.ApprovedAt = nil
	for i := range product.Images {
		product.Images[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return 0, err
	}
	return product.ID, nil
}

// GetCompanyByProduct returns the company ids owning productID.
func (r *CompanyRepository) GetCompanyByProduct(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Pluck("company_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteProduct removes a product and its images. A product that appears on
// any order line is refused with ErrProductSold.
func (r *CompanyRepository) DeleteProduct(ctx context.Context, productID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sold int64
		if err := tx.Model(&models.OrderDetail{}).Where("product_id = ?", productID).Count(&sold).Error; err != nil {
			return err
		}
		if sold > 0 {
			return ErrProductSold
		}

		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, productID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetSale sums the non-refunded order lines per product of a company.
func (r *CompanyRepository) GetSale(ctx context.Context, companyID uint) ([]SaleRow, error) {
	rows := []SaleRow{}
	if err := r.db.WithContext(ctx).
		Table("order_details").
		Select("products.id AS product_id, products.name AS name, SUM(order_details.count) AS count, SUM(order_details.price) AS amount").
		Joins("JOIN products ON products.id = order_details.product_id").
		Where("products.company_id = ? AND order_details.status <> ?", companyID, models.OrderDetailRefunded).
		Group("products.id, products.name").
		Order("products.id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetOrder lists the order lines containing the company's products.
func (r *CompanyRepository) GetOrder(ctx context.Context, companyID uint) ([]models.OrderDetail, error) {
	var details []models.OrderDetail
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Order").
		Joins("JOIN products ON products.id = order_details.product_id").
		Where("products.company_id = ?", companyID).
		Order("order_details.id desc").
		Find(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

// GetCompanyByOrderDetail returns the company ids selling the product of an
// order line.
func (r *CompanyRepository) GetCompanyByOrderDetail(ctx context.Context, orderDetailID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Table("order_details").
		Joins("JOIN products ON products.id = order_details.product_id").
		Where("order_details.id = ?", orderDetailID).
		Pluck("products.company_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AddDeliveryNumber records the courier tracking number and marks the line as
// shipping.
func (r *CompanyRepository) AddDeliveryNumber(ctx context.Context, orderDetailID uint, number string) error {
	res := r.db.WithContext(ctx).Model(&models.OrderDetail{}).
		Where("id = ? AND status <> ?", orderDetailID, models.OrderDetailRefunded).
		Updates(map[string]interface{}{
			"delivery_number": number,
			"status":          models.OrderDetailShipping,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Refund marks an order line refunded and returns its count to stock.
func (r *CompanyRepository) Refund(ctx context.Context, orderDetailID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var detail models.OrderDetail
		if err := tx.First(&detail, orderDetailID).Error; err != nil {
			return notFound(err)
		}
		if detail.Status == models.OrderDetailRefunded {
			return ErrAlreadyRefunded
		}

		if err := tx.Model(&detail).Update("status", models.OrderDetailRefunded).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).
			Where("id = ?", detail.ProductID).
			Update("stock", gorm.Expr("stock + ?", detail.Count)).Error
	})
}

// GetInfo returns the company profile.
func (r *CompanyRepository) GetInfo(ctx context.Context, companyID uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, companyID).Error; err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

// UpdateBusinessInfo stores the settlement account of a company.
func (r *CompanyRepository) UpdateBusinessInfo(ctx context.Context, companyID uint, info BusinessInfo) error {
	res := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("id = ?", companyID).
		Updates(map[string]interface{}{
			"business_number": info.BusinessNumber,
			"account_number":  info.AccountNumber,
			"account_holder":  info.AccountHolder,
			"account_bank":    info.AccountBank,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetIDByNameAndPhone returns the login email of the company matching name
// and phone.
func (r *CompanyRepository) GetIDByNameAndPhone(ctx context.Context, name, phone string) (string, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).
		Select("id", "email").
		Where("name = ? AND phone_number = ?", name, phone).
		First(&company).Error; err != nil {
		return "", notFound(err)
	}
	return company.Email, nil
}

// GetUserByEmailNamePhone returns the company identified by all three fields.
func (r *CompanyRepository) GetUserByEmailNamePhone(ctx context.Context, email, name, phone string) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).
		Where("email = ? AND name = ? AND phone_number = ?", email, name, phone).
		First(&company).Error; err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

// UpdatePassword replaces the password hash of the company owning phone.
func (r *CompanyRepository) UpdatePassword(ctx context.Context, email, phone, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("email = ? AND phone_number = ?", email, phone).
		Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBoard lists the questions asked about the company's products.
func (r *CompanyRepository) GetBoard(ctx context.Context, companyID uint, pg utils.Pagination) ([]models.Board, error) {
	var boards []models.Board
	if err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = boards.product_id").
		Where("products.company_id = ?", companyID).
		Order("boards.id desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// GetCompanyByBoard returns the company ids owning the product a board post
// is about.
func (r *CompanyRepository) GetCompanyByBoard(ctx context.Context, boardID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Table("boards").
		Joins("JOIN products ON products.id = boards.product_id").
		Where("boards.id = ?", boardID).
		Pluck("products.company_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AnswerBoard stores the company's answer to a board post.
func (r *CompanyRepository) AnswerBoard(ctx context.Context, boardID uint, answer string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Board{}).
		Where("id = ?", boardID).
		Updates(map[string]interface{}{"answer": answer, "answered_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
