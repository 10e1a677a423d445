package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/angagu/internal/errcode"
	"github.com/example/angagu/internal/models"
	"github.com/example/angagu/internal/repository"
	"github.com/example/angagu/internal/utils"
)

// Products lists every approved product.
func (h *CustomerHandler) Products(c *fiber.Ctx) error {
	products, err := h.repo.ListProducts(c.UserContext())
	if err != nil {
		return fail(c, fiber.StatusAccepted, errcode.Database)
	}
	return success(c, products)
}

// productDetail always carries the images key, even for a product without
// images.
type productDetail struct {
	*models.Product
	Images []models.ProductImage `json:"images"`
}

// ProductDetail returns a product with its images in display order.
func (h *CustomerHandler) ProductDetail(c *fiber.Ctx) error {
	productID := utils.ParamID(c, "productId")

	product, images, err := h.repo.GetProductDetail(c.UserContext(), productID)
	if err != nil {
		return fail(c, fiber.StatusNotFound, errcode.Database)
	}
	if product == nil {
		return fail(c, fiber.StatusNotFound, errcode.ProductNotFound)
	}

	if images == nil {
		images = []models.ProductImage{}
	}
	return success(c, productDetail{Product: product, Images: images})
}

// ModelURL returns the AR model location of a product.
func (h *CustomerHandler) ModelURL(c *fiber.Ctx) error {
	url, err := h.repo.GetModelURL(c.UserContext(), utils.ParamID(c, "productId"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, errcode.Database)
	}
	return success(c, fiber.Map{"model_url": url})
}

// ProductBoard lists the questions asked about a product.
func (h *CustomerHandler) ProductBoard(c *fiber.Ctx) error {
	boards, err := h.repo.GetProductBoard(c.UserContext(), utils.ParamID(c, "productId"), utils.ParsePagination(c))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, boards)
}

type boardRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostProductBoard asks a question about a product.
func (h *CustomerHandler) PostProductBoard(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	var req boardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return fail(c, fiber.StatusBadRequest, errcode.InvalidBoard)
	}

	id, err := h.repo.PostProductBoard(c.UserContext(), &models.Board{
		ProductID:  utils.ParamID(c, "productId"),
		CustomerID: customerID,
		Title:      req.Title,
		Content:    req.Content,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, errcode.ProductNotFound)
	}
	if err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.BoardInsert, err)
	}

	return success(c, fiber.Map{"id": id})
}
