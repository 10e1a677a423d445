package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/angagu/internal/errcode"
	"github.com/example/angagu/internal/models"
	"github.com/example/angagu/internal/repository"
	"github.com/example/angagu/internal/services"
	"github.com/example/angagu/internal/storage"
	"github.com/example/angagu/internal/utils"
)

const maxProductImages = 10

// Products lists the products of the authenticated company.
func (h *CompanyHandler) Products(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	products, err := h.repo.GetProducts(c.UserContext(), companyID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, products)
}

type productRequest struct {
	Name        string `json:"name" form:"name" validate:"required,max=255"`
	Price       int    `json:"price" form:"price" validate:"min=0"`
	Description string `json:"description" form:"description"`
	Category    string `json:"category" form:"category" validate:"max=100"`
	Size        string `json:"size" form:"size" validate:"max=100"`
	Stock       int    `json:"stock" form:"stock" validate:"min=0"`
}

// PostProduct registers a product. Images arrive as the multipart "images"
// files in display order and the AR model as the optional "model" file. The
// product stays hidden until an admin approves it.
func (h *CompanyHandler) PostProduct(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fail(c, fiber.StatusNotFound, errcode.InvalidProduct)
	}

	product := models.Product{
		CompanyID:   companyID,
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Size:        req.Size,
		Stock:       req.Stock,
	}

	ctx := c.UserContext()
	var keys []string
	if form, err := c.MultipartForm(); err == nil {
		images := form.File["images"]
		if len(images) > maxProductImages {
			return fail(c, fiber.StatusNotFound, errcode.InvalidProduct)
		}

		prefix := fmt.Sprintf("products/%d", companyID)
		for _, fh := range images {
			key, url, err := h.upload(ctx, prefix, fh)
			if err != nil {
				h.discard(ctx, keys)
				return failWith(c, fiber.StatusBadRequest, errcode.ProductInsert, err)
			}
			keys = append(keys, key)
			product.Images = append(product.Images, models.ProductImage{URL: url})
		}
		if len(product.Images) > 0 {
			product.Thumbnail = product.Images[0].URL
		}

		if files := form.File["model"]; len(files) > 0 {
			key, url, err := h.upload(ctx, prefix+"/ar", files[0])
			if err != nil {
				h.discard(ctx, keys)
				return failWith(c, fiber.StatusBadRequest, errcode.ProductInsert, err)
			}
			keys = append(keys, key)
			product.ModelURL = url
		}
	}

	id, err := h.repo.PostProduct(ctx, &product)
	if err != nil {
		h.discard(ctx, keys)
		return failWith(c, fiber.StatusBadRequest, errcode.ProductInsert, err)
	}

	companyName := fmt.Sprintf("#%d", companyID)
	if info, err := h.repo.GetInfo(ctx, companyID); err == nil {
		companyName = info.Name
	}
	h.announce(services.ProductNotification{
		ProductID:   id,
		Name:        product.Name,
		Price:       product.Price,
		CompanyName: companyName,
		ImageCount:  len(product.Images),
	})

	return success(c, fiber.Map{"id": id})
}

func (h *CompanyHandler) upload(ctx context.Context, prefix string, fh *multipart.FileHeader) (string, string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer file.Close()

	key := storage.ObjectKey(prefix, fh.Filename)
	url, err := h.uploader.Upload(ctx, key, file, fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// discard removes objects uploaded for a product that was never stored.
func (h *CompanyHandler) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := h.uploader.Delete(ctx, key); err != nil {
			h.log.WithError(err).WithField("key", key).Warn("failed to remove orphaned upload")
		}
	}
}

// announce notifies the admin chat without holding up the response.
func (h *CompanyHandler) announce(n services.ProductNotification) {
	if h.notifier == nil {
		return
	}
	go func() {
		if err := h.notifier.NotifyPendingProduct(n); err != nil {
			h.log.WithError(err).WithField("product_id", n.ProductID).Warn("failed to notify admin about pending product")
		}
	}()
}

// DeleteProduct removes a product owned by the company.
func (h *CompanyHandler) DeleteProduct(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	productID := utils.ParamID(c, "productId")
	owners, lookupErr := h.repo.GetCompanyByProduct(c.UserContext(), productID)
	if ok, err := ownership(c, owners, lookupErr, companyID); !ok {
		return err
	}

	err = h.repo.DeleteProduct(c.UserContext(), productID)
	if errors.Is(err, repository.ErrProductSold) {
		return fail(c, fiber.StatusBadRequest, errcode.ProductDelete)
	}
	if err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.ProductDelete, err)
	}
	return success(c, fiber.Map{"id": productID})
}

// Sale summarises the company's sales per product.
func (h *CompanyHandler) Sale(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	rows, err := h.repo.GetSale(c.UserContext(), companyID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, rows)
}

// Orders lists the order lines for the company's products.
func (h *CompanyHandler) Orders(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	details, err := h.repo.GetOrder(c.UserContext(), companyID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, details)
}

type deliveryRequest struct {
	DeliveryNumber string `json:"delivery_number"`
}

// AddDeliveryNumber records the tracking number of a shipped order line.
func (h *CompanyHandler) AddDeliveryNumber(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	detailID := utils.ParamID(c, "orderDetailId")
	owners, lookupErr := h.repo.GetCompanyByOrderDetail(c.UserContext(), detailID)
	if ok, err := ownership(c, owners, lookupErr, companyID); !ok {
		return err
	}

	var req deliveryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	number := strings.TrimSpace(req.DeliveryNumber)
	if number == "" {
		return fail(c, fiber.StatusBadRequest, errcode.DeliveryNumber)
	}

	if err := h.repo.AddDeliveryNumber(c.UserContext(), detailID, number); err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.DeliveryNumber, err)
	}
	return success(c, fiber.Map{"id": detailID})
}

// Refund refunds an order line of the company's product.
func (h *CompanyHandler) Refund(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	detailID := utils.ParamID(c, "orderDetailId")
	owners, lookupErr := h.repo.GetCompanyByOrderDetail(c.UserContext(), detailID)
	if ok, err := ownership(c, owners, lookupErr, companyID); !ok {
		return err
	}

	if err := h.repo.Refund(c.UserContext(), detailID); err != nil {
		if !errors.Is(err, repository.ErrAlreadyRefunded) {
			h.log.WithError(err).WithFields(logrus.Fields{"order_detail_id": detailID}).Error("refund failed")
		}
		return fail(c, fiber.StatusBadRequest, errcode.Refund)
	}
	return success(c, fiber.Map{"id": detailID})
}

// Board lists questions about the company's products.
func (h *CompanyHandler) Board(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	boards, err := h.repo.GetBoard(c.UserContext(), companyID, utils.ParsePagination(c))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, boards)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// AnswerBoard answers a question about one of the company's products.
func (h *CompanyHandler) AnswerBoard(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	boardID := utils.ParamID(c, "boardId")
	owners, lookupErr := h.repo.GetCompanyByBoard(c.UserContext(), boardID)
	if ok, err := ownership(c, owners, lookupErr, companyID); !ok {
		return err
	}

	var req answerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		return fail(c, fiber.StatusBadRequest, errcode.InvalidBoard)
	}

	if err := h.repo.AnswerBoard(c.UserContext(), boardID, answer); err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.BoardAnswer, err)
	}
	return success(c, fiber.Map{"id": boardID})
}
