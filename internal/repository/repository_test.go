package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/example/angagu/internal/database"
	"github.com/example/angagu/internal/models"
	"github.com/example/angagu/internal/utils"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func seedCompany(t *testing.T, db *gorm.DB, email string) models.Company {
	t.Helper()
	c := models.Company{Email: email, Name: "company " + email, PhoneNumber: "01055550000"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedCustomer(t *testing.T, db *gorm.DB, email, phone string) models.Customer {
	t.Helper()
	c := models.Customer{Email: email, Name: "customer", PhoneNumber: phone}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, companyID uint, approved bool, stock int) models.Product {
	t.Helper()
	p := models.Product{CompanyID: companyID, Name: "sofa", Price: 1000, Stock: stock, Approved: approved}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: customers.email")))
	assert.True(t, isUniqueViolation(errors.New("Error 1062: Duplicate entry 'a@b.c' for key 'email'")))
}

func TestCustomerSignupMapsPostgresUniqueViolation(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "customers"`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	repo := NewCustomerRepository(db)
	_, err = repo.CustomerSignup(context.Background(), SignupInput{Email: "a@b.co", Password: "hash", Name: "kim"}, "01012345678")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerSignupDuplicate(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	id, err := repo.CustomerSignup(ctx, SignupInput{Email: "kim@example.com", Password: "hash", Name: "kim"}, "01012345678")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = repo.CustomerSignup(ctx, SignupInput{Email: "kim@example.com", Password: "hash", Name: "kim"}, "01099998888")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.CustomerSignup(ctx, SignupInput{Email: "lee@example.com", Password: "hash", Name: "lee"}, "01012345678")
	assert.ErrorIs(t, err, ErrDuplicate)

	assert.ErrorIs(t, repo.CheckEmailDuplicate(ctx, "kim@example.com"), ErrEmailTaken)
	assert.NoError(t, repo.CheckEmailDuplicate(ctx, "park@example.com"))
}

func TestGetProductDetail(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	company := seedCompany(t, db, "seller@example.com")
	approved := seedProduct(t, db, company.ID, true, 1)
	pending := seedProduct(t, db, company.ID, false, 1)

	require.NoError(t, db.Create(&[]models.ProductImage{
		{ProductID: approved.ID, URL: "/uploads/b.png", Position: 1},
		{ProductID: approved.ID, URL: "/uploads/a.png", Position: 0},
	}).Error)

	product, images, err := repo.GetProductDetail(ctx, approved.ID)
	require.NoError(t, err)
	require.NotNil(t, product)
	require.Len(t, images, 2)
	assert.Equal(t, "/uploads/a.png", images[0].URL)
	assert.Equal(t, "/uploads/b.png", images[1].URL)

	product, _, err = repo.GetProductDetail(ctx, pending.ID)
	require.NoError(t, err)
	assert.Nil(t, product)

	product, _, err = repo.GetProductDetail(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, product)

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, approved.ID, products[0].ID)
}

func TestAddressDefaultHandling(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "kim@example.com", "01012345678")

	first, err := repo.PostAddress(ctx, customer.ID, AddressInput{Recipient: "kim", Road: strPtr("Teheran-ro 1"), Detail: "101"})
	require.NoError(t, err)
	second, err := repo.PostAddress(ctx, customer.ID, AddressInput{Recipient: "kim", Land: strPtr("Yeoksam-dong 1"), Detail: "202"})
	require.NoError(t, err)

	def, err := repo.GetDefaultAddress(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, first, def.ID)

	require.NoError(t, repo.SetDefaultAddress(ctx, customer.ID, second))
	def, err = repo.GetDefaultAddress(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, second, def.ID)

	var defaults int64
	require.NoError(t, db.Model(&models.Address{}).Where("customer_id = ? AND is_default = ?", customer.ID, true).Count(&defaults).Error)
	assert.EqualValues(t, 1, defaults)

	require.NoError(t, repo.PutAddress(ctx, first, AddressInput{Recipient: "lee", Land: strPtr("Samsung-dong 2"), Detail: "303"}))
	var updated models.Address
	require.NoError(t, db.First(&updated, first).Error)
	assert.Nil(t, updated.Road)
	require.NotNil(t, updated.Land)
	assert.Equal(t, "Samsung-dong 2", *updated.Land)

	owners, err := repo.GetCustomerByAddress(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []uint{customer.ID}, owners)

	owners, err = repo.GetCustomerByAddress(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, owners)

	require.NoError(t, repo.DeleteAddress(ctx, first))
	assert.ErrorIs(t, repo.DeleteAddress(ctx, first), ErrNotFound)
}

func TestDeleteDefaultAddressPromotesAnother(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, db, "kim@example.com", "01012345678")

	first, err := repo.PostAddress(ctx, customer.ID, AddressInput{Recipient: "kim", Road: strPtr("Teheran-ro 1"), Detail: "101"})
	require.NoError(t, err)
	second, err := repo.PostAddress(ctx, customer.ID, AddressInput{Recipient: "kim", Land: strPtr("Yeoksam-dong 1"), Detail: "202"})
	require.NoError(t, err)
	third, err := repo.PostAddress(ctx, customer.ID, AddressInput{Recipient: "kim", Road: strPtr("Samsung-ro 3"), Detail: "303"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAddress(ctx, second))
	def, err := repo.GetDefaultAddress(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, first, def.ID)

	require.NoError(t, repo.DeleteAddress(ctx, first))
	def, err = repo.GetDefaultAddress(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, third, def.ID)

	require.NoError(t, repo.DeleteAddress(ctx, third))
	var remaining int64
	require.NoError(t, db.Model(&models.Address{}).Where("customer_id = ?", customer.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestPostOrderAndRefund(t *testing.T) {
	db := testDB(t)
	customers := NewCustomerRepository(db)
	companies := NewCompanyRepository(db)
	ctx := context.Background()

	company := seedCompany(t, db, "seller@example.com")
	product := seedProduct(t, db, company.ID, true, 3)
	customer := seedCustomer(t, db, "kim@example.com", "01012345678")
	addressID, err := customers.PostAddress(ctx, customer.ID, AddressInput{Recipient: "kim", Road: strPtr("Teheran-ro 1"), Detail: "101"})
	require.NoError(t, err)

	orderID, err := customers.PostOrder(ctx, customer.ID, OrderInput{
		AddressID: addressID,
		Items:     []OrderItemInput{{ProductID: product.ID, Count: 2}},
	})
	require.NoError(t, err)

	_, err = customers.PostOrder(ctx, customer.ID, OrderInput{
		AddressID: addressID,
		Items:     []OrderItemInput{{ProductID: product.ID, Count: 2}},
	})
	assert.ErrorIs(t, err, ErrOutOfStock)

	var stock models.Product
	require.NoError(t, db.First(&stock, product.ID).Error)
	assert.Equal(t, 1, stock.Stock)

	order, err := customers.GetOrderDetail(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, order.Details, 1)
	assert.Equal(t, 2000, order.TotalPrice)
	assert.Equal(t, "Teheran-ro 1 101", order.DeliveryAddress)
	assert.Equal(t, models.OrderDetailPaid, order.Details[0].Status)

	sales, err := companies.GetSale(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 2, sales[0].Count)
	assert.Equal(t, 2000, sales[0].Amount)

	detailID := order.Details[0].ID
	owners, err := companies.GetCompanyByOrderDetail(ctx, detailID)
	require.NoError(t, err)
	assert.Equal(t, []uint{company.ID}, owners)

	require.NoError(t, companies.AddDeliveryNumber(ctx, detailID, "1234-5678"))
	require.NoError(t, companies.Refund(ctx, detailID))
	assert.ErrorIs(t, companies.Refund(ctx, detailID), ErrAlreadyRefunded)
	assert.ErrorIs(t, companies.AddDeliveryNumber(ctx, detailID, "1"), ErrNotFound)

	require.NoError(t, db.First(&stock, product.ID).Error)
	assert.Equal(t, 3, stock.Stock)

	sales, err = companies.GetSale(ctx, company.ID)
	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)

	assert.ErrorIs(t, companies.DeleteProduct(ctx, product.ID), ErrProductSold)
	require.NoError(t, db.First(&stock, product.ID).Error)
}

func TestPostOrderForeignAddress(t *testing.T) {
	db := testDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	company := seedCompany(t, db, "seller@example.com")
	product := seedProduct(t, db, company.ID, true, 3)
	owner := seedCustomer(t, db, "kim@example.com", "01012345678")
	other := seedCustomer(t, db, "lee@example.com", "01087654321")
	addressID, err := repo.PostAddress(ctx, owner.ID, AddressInput{Recipient: "kim", Road: strPtr("Teheran-ro 1"), Detail: "101"})
	require.NoError(t, err)

	_, err = repo.PostOrder(ctx, other.ID, OrderInput{
		AddressID: addressID,
		Items:     []OrderItemInput{{ProductID: product.ID, Count: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewsAndBoard(t *testing.T) {
	db := testDB(t)
	customers := NewCustomerRepository(db)
	companies := NewCompanyRepository(db)
	ctx := context.Background()

	company := seedCompany(t, db, "seller@example.com")
	product := seedProduct(t, db, company.ID, true, 3)
	customer := seedCustomer(t, db, "kim@example.com", "01012345678")
	addressID, err := customers.PostAddress(ctx, customer.ID, AddressInput{Recipient: "kim", Road: strPtr("Teheran-ro 1"), Detail: "101"})
	require.NoError(t, err)
	orderID, err := customers.PostOrder(ctx, customer.ID, OrderInput{AddressID: addressID, Items: []OrderItemInput{{ProductID: product.ID, Count: 1}}})
	require.NoError(t, err)
	order, err := customers.GetOrderDetail(ctx, orderID)
	require.NoError(t, err)

	reviewID, err := customers.PostReview(ctx, &models.Review{OrderID: orderID, OrderDetailID: order.Details[0].ID, CustomerID: customer.ID, Rating: 5, Content: "comfortable"})
	require.NoError(t, err)

	_, err = customers.PostReview(ctx, &models.Review{OrderID: orderID + 1, OrderDetailID: order.Details[0].ID, CustomerID: customer.ID, Rating: 5, Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	owners, err := customers.GetReviewOwners(ctx, orderID, reviewID)
	require.NoError(t, err)
	assert.Equal(t, []uint{customer.ID}, owners)

	require.NoError(t, customers.UpdateReview(ctx, reviewID, 3, "fine"))
	reviews, err := customers.GetReviews(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, product.ID, reviews[0].ProductID)
	assert.Equal(t, 3, reviews[0].Rating)
	require.NoError(t, customers.DeleteReview(ctx, reviewID))

	boardID, err := customers.PostProductBoard(ctx, &models.Board{ProductID: product.ID, CustomerID: customer.ID, Title: "size", Content: "how wide?"})
	require.NoError(t, err)
	_, err = customers.PostProductBoard(ctx, &models.Board{ProductID: 9999, CustomerID: customer.ID, Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrNotFound)

	boardOwners, err := companies.GetCompanyByBoard(ctx, boardID)
	require.NoError(t, err)
	assert.Equal(t, []uint{company.ID}, boardOwners)

	require.NoError(t, companies.AnswerBoard(ctx, boardID, "180cm"))
	boards, err := companies.GetBoard(ctx, company.ID, utils.Pagination{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "180cm", boards[0].Answer)
	assert.NotNil(t, boards[0].AnsweredAt)

	listed, err := customers.GetProductBoard(ctx, product.ID, utils.Pagination{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestCompanyAccountLookups(t *testing.T) {
	db := testDB(t)
	repo := NewCompanyRepository(db)
	ctx := context.Background()

	id, err := repo.CompanySignup(ctx, CompanySignupInput{Email: "seller@example.com", Password: "hash", Name: "angagu", PhoneNumber: "01012345678"})
	require.NoError(t, err)

	_, err = repo.CompanySignup(ctx, CompanySignupInput{Email: "seller@example.com", Password: "hash", Name: "other", PhoneNumber: "01011112222"})
	assert.ErrorIs(t, err, ErrDuplicate)

	email, err := repo.GetIDByNameAndPhone(ctx, "angagu", "01012345678")
	require.NoError(t, err)
	assert.Equal(t, "seller@example.com", email)

	_, err = repo.GetIDByNameAndPhone(ctx, "nobody", "01012345678")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := repo.GetUserByEmailNamePhone(ctx, "seller@example.com", "angagu", "01012345678")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)

	require.NoError(t, repo.UpdatePassword(ctx, "seller@example.com", "01012345678", "new-hash"))
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "seller@example.com", "01000000000", "new-hash"), ErrNotFound)

	require.NoError(t, repo.UpdateBusinessInfo(ctx, id, BusinessInfo{BusinessNumber: "123-45-67890", AccountNumber: "110-1", AccountHolder: "kim", AccountBank: "KB"}))
	info, err := repo.GetInfo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "123-45-67890", info.BusinessNumber)
	assert.Equal(t, "KB", info.AccountBank)
}

func TestProductLifecycle(t *testing.T) {
	db := testDB(t)
	companies := NewCompanyRepository(db)
	admins := NewAdminRepository(db)
	ctx := context.Background()

	company := seedCompany(t, db, "seller@example.com")
	productID, err := companies.PostProduct(ctx, &models.Product{
		CompanyID: company.ID,
		Name:      "chair",
		Price:     50000,
		Approved:  true,
		Images:    []models.ProductImage{{URL: "/uploads/1.png"}, {URL: "/uploads/2.png"}},
	})
	require.NoError(t, err)

	products, err := companies.GetProducts(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.False(t, products[0].Approved)
	require.Len(t, products[0].Images, 2)
	assert.Equal(t, 1, products[0].Images[1].Position)

	pending, total, err := admins.GetApproveList(ctx, utils.Pagination{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Company)
	assert.Equal(t, company.Name, pending[0].Company.Name)

	require.NoError(t, admins.ApproveProduct(ctx, productID))
	assert.ErrorIs(t, admins.ApproveProduct(ctx, productID), ErrNotFound)
	assert.ErrorIs(t, admins.ApproveProduct(ctx, 9999), ErrNotFound)

	url, err := NewCustomerRepository(db).GetModelURL(ctx, productID)
	require.NoError(t, err)
	assert.Empty(t, url)

	owners, err := companies.GetCompanyByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, []uint{company.ID}, owners)

	require.NoError(t, companies.DeleteProduct(ctx, productID))
	assert.ErrorIs(t, companies.DeleteProduct(ctx, productID), ErrNotFound)

	var images int64
	require.NoError(t, db.Model(&models.ProductImage{}).Where("product_id = ?", productID).Count(&images).Error)
	assert.Zero(t, images)
}

func TestCreateAdmin(t *testing.T) {
	db := testDB(t)
	repo := NewAdminRepository(db)
	ctx := context.Background()

	_, err := repo.CreateAdmin(ctx, "admin@example.com", "hash", "root")
	require.NoError(t, err)
	_, err = repo.CreateAdmin(ctx, "admin@example.com", "hash", "root")
	assert.ErrorIs(t, err, ErrDuplicate)

	admins, err := repo.GetAdminByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}
