package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/angagu/internal/models"
	"github.com/example/angagu/internal/utils"
)

// CustomerRepository serves the customer-facing endpoints.
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository constructs CustomerRepository.
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// SignupInput is a customer registration with an already hashed password.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// AddressInput carries the mutable address fields.
type AddressInput struct {
	Name        string
	Recipient   string
	PhoneNumber string
	Road        *string
	Land        *string
	Detail      string
	Zipcode     string
	IsDefault   bool
}

// OrderItemInput is one line of a new order.
type OrderItemInput struct {
	ProductID uint
	Count     int
}

// OrderInput is a new order placed by a customer.
type OrderInput struct {
	AddressID uint
	Items     []OrderItemInput
}

// GetCustomerByEmail returns every customer registered with email. Callers
// treat anything other than exactly one row as an unknown account.
func (r *CustomerRepository) GetCustomerByEmail(ctx context.Context, email string) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).Limit(2).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// ListProducts returns approved products, newest first.
func (r *CustomerRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("approved = ?", true).
		Order("id desc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductDetail returns an approved product and its images in display
// order. A missing product is reported as a nil product and no error.
func (r *CustomerRepository) GetProductDetail(ctx context.Context, productID uint) (*models.Product, []models.ProductImage, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND approved = ?", productID, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var images []models.ProductImage
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position asc, id asc").
		Find(&images).Error; err != nil {
		return nil, nil, err
	}

	return &product, images, nil
}

// GetModelURL returns the AR model URL of an approved product.
func (r *CustomerRepository) GetModelURL(ctx context.Context, productID uint) (string, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Select("id", "model_url").
		Where("id = ? AND approved = ?", productID, true).
		First(&product).Error; err != nil {
		return "", notFound(err)
	}
	return product.ModelURL, nil
}

// GetOrderList returns the customer's orders with their lines.
func (r *CustomerRepository) GetOrderList(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Preload("Details.Product").
		Where("customer_id = ?", customerID).
		Order("id desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderOwners returns the customer ids owning orderID.
func (r *CustomerRepository) GetOrderOwners(ctx context.Context, orderID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Pluck("customer_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// GetOrderDetail returns an order with its lines, products and reviews.
func (r *CustomerRepository) GetOrderDetail(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Preload("Details.Product").
		Preload("Details.Reviews").
		First(&order, orderID).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// PostOrder places an order, snapshotting the delivery address and
// decrementing stock for each line.
func (r *CustomerRepository) PostOrder(ctx context.Context, customerID uint, in OrderInput) (uint, error) {
	order := models.Order{CustomerID: customerID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.Where("id = ? AND customer_id = ?", in.AddressID, customerID).First(&address).Error; err != nil {
			return notFound(err)
		}
		order.AddressID = &address.ID
		order.Recipient = address.Recipient
		order.DeliveryAddress = formatAddress(address)

		for _, item := range in.Items {
			var product models.Product
			if err := tx.Where("id = ? AND approved = ?", item.ProductID, true).First(&product).Error; err != nil {
				return notFound(err)
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, item.Count).
				Update("stock", gorm.Expr("stock - ?", item.Count))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOutOfStock
			}

			price := product.Price * item.Count
			order.TotalPrice += price
			order.Details = append(order.Details, models.OrderDetail{
				ProductID: product.ID,
				Count:     item.Count,
				Price:     price,
				Status:    models.OrderDetailPaid,
			})
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}

// CustomerSignup registers a customer bound to a verified phone number.
func (r *CustomerRepository) CustomerSignup(ctx context.Context, in SignupInput, phone string) (uint, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("email = ? OR phone_number = ?", in.Email, phone).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, ErrDuplicate
	}

	customer := models.Customer{
		Email:       in.Email,
		Password:    in.Password,
		Name:        in.Name,
		PhoneNumber: phone,
	}
	if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return customer.ID, nil
}

// CheckEmailDuplicate returns ErrEmailTaken when email is registered.
func (r *CustomerRepository) CheckEmailDuplicate(ctx context.Context, email string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return nil
}

// GetAddresses lists the customer's addresses, default first.
func (r *CustomerRepository) GetAddresses(ctx context.Context, customerID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_default desc, id asc").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// PostAddress inserts an address. The first address of a customer becomes
// the default one.
func (r *CustomerRepository) PostAddress(ctx context.Context, customerID uint, in AddressInput) (uint, error) {
	address := models.Address{
		CustomerID:  customerID,
		Name:        in.Name,
		Recipient:   in.Recipient,
		PhoneNumber: in.PhoneNumber,
		Road:        in.Road,
		Land:        in.Land,
		Detail:      in.Detail,
		Zipcode:     in.Zipcode,
		IsDefault:   in.IsDefault,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).Where("customer_id = ?", customerID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			address.IsDefault = true
		}
		if address.IsDefault && count > 0 {
			if err := tx.Model(&models.Address{}).
				Where("customer_id = ?", customerID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return 0, err
	}
	return address.ID, nil
}

// GetCustomerByAddress returns the customer ids owning addressID.
func (r *CustomerRepository) GetCustomerByAddress(ctx context.Context, addressID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Address{}).
		Where("id = ?", addressID).
		Pluck("customer_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteAddress removes an address. When it was the default, the customer's
// most recently added remaining address becomes the default.
func (r *CustomerRepository) DeleteAddress(ctx context.Context, addressID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.First(&address, addressID).Error; err != nil {
			return notFound(err)
		}

		if err := tx.Delete(&models.Address{}, addressID).Error; err != nil {
			return err
		}
		if !address.IsDefault {
			return nil
		}

		var next models.Address
		err := tx.Where("customer_id = ?", address.CustomerID).Order("id desc").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}

// PutAddress replaces the address fields. Road and land are written together
// so that switching from one to the other clears the previous value.
func (r *CustomerRepository) PutAddress(ctx context.Context, addressID uint, in AddressInput) error {
	res := r.db.WithContext(ctx).Model(&models.Address{}).
		Where("id = ?", addressID).
		Updates(map[string]interface{}{
			"name":         in.Name,
			"recipient":    in.Recipient,
			"phone_number": in.PhoneNumber,
			"road":         in.Road,
			"land":         in.Land,
			"detail":       in.Detail,
			"zipcode":      in.Zipcode,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefaultAddress makes addressID the customer's only default address.
func (r *CustomerRepository) SetDefaultAddress(ctx context.Context, customerID, addressID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("customer_id = ?", customerID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Address{}).
			Where("id = ? AND customer_id = ?", addressID, customerID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetDefaultAddress returns the customer's default address.
func (r *CustomerRepository) GetDefaultAddress(ctx context.Context, customerID uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		First(&address).Error; err != nil {
		return nil, notFound(err)
	}
	return &address, nil
}

// PostReview attaches a review to a line of the order.
func (r *CustomerRepository) PostReview(ctx context.Context, review *models.Review) (uint, error) {
	var detail models.OrderDetail
	if err := r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", review.OrderDetailID, review.OrderID).
		First(&detail).Error; err != nil {
		return 0, notFound(err)
	}

	review.ProductID = detail.ProductID
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return 0, err
	}
	return review.ID, nil
}

// GetReviews lists the reviews written for an order.
func (r *CustomerRepository) GetReviews(ctx context.Context, orderID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetReviewOwners returns the customer ids owning reviewID within orderID.
func (r *CustomerRepository) GetReviewOwners(ctx context.Context, orderID, reviewID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ? AND order_id = ?", reviewID, orderID).
		Pluck("customer_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteReview removes a review.
func (r *CustomerRepository) DeleteReview(ctx context.Context, reviewID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, reviewID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateReview rewrites the rating and content of a review.
func (r *CustomerRepository) UpdateReview(ctx context.Context, reviewID uint, rating int, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]interface{}{"rating": rating, "content": content})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProductBoard lists the questions asked about a product.
func (r *CustomerRepository) GetProductBoard(ctx context.Context, productID uint, pg utils.Pagination) ([]models.Board, error) {
	var boards []models.Board
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// PostProductBoard stores a question about an approved product.
func (r *CustomerRepository) PostProductBoard(ctx context.Context, board *models.Board) (uint, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND approved = ?", board.ProductID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrNotFound
	}

	if err := r.db.WithContext(ctx).Create(board).Error; err != nil {
		return 0, err
	}
	return board.ID, nil
}

func formatAddress(a models.Address) string {
	base := ""
	switch {
	case a.Road != nil:
		base = *a.Road
	case a.Land != nil:
		base = *a.Land
	}
	if a.Detail == "" {
		return base
	}
	return base + " " + a.Detail
}
