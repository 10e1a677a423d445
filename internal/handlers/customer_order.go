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

// OrderList returns the orders of the authenticated customer.
func (h *CustomerHandler) OrderList(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	orders, err := h.repo.GetOrderList(c.UserContext(), customerID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, orders)
}

// OrderDetail returns one order of the authenticated customer.
func (h *CustomerHandler) OrderDetail(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	orderID := utils.ParamID(c, "orderId")
	owners, lookupErr := h.repo.GetOrderOwners(c.UserContext(), orderID)
	if ok, err := ownership(c, owners, lookupErr, customerID); !ok {
		return err
	}

	order, err := h.repo.GetOrderDetail(c.UserContext(), orderID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, order)
}

type orderItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Count     int  `json:"count" validate:"required,min=1,max=99"`
}

type orderRequest struct {
	AddressID uint               `json:"address_id" validate:"required"`
	Items     []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PostOrder places an order for the authenticated customer.
func (h *CustomerHandler) PostOrder(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.InvalidOrder)
	}

	in := repository.OrderInput{AddressID: req.AddressID}
	for _, item := range req.Items {
		in.Items = append(in.Items, repository.OrderItemInput{ProductID: item.ProductID, Count: item.Count})
	}

	id, err := h.repo.PostOrder(c.UserContext(), customerID, in)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, fiber.StatusNotFound, errcode.Ambiguous)
	case errors.Is(err, repository.ErrOutOfStock):
		return fail(c, fiber.StatusBadRequest, errcode.OrderInsert)
	case err != nil:
		return failWith(c, fiber.StatusBadRequest, errcode.OrderInsert, err)
	}

	return success(c, fiber.Map{"id": id})
}

type reviewRequest struct {
	OrderDetailID uint   `json:"order_detail_id"`
	Rating        int    `json:"rating" validate:"min=1,max=5"`
	Content       string `json:"content" validate:"required,max=2000"`
}

// PostReview reviews a line of an order owned by the customer.
func (h *CustomerHandler) PostReview(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	orderID := utils.ParamID(c, "orderId")
	owners, lookupErr := h.repo.GetOrderOwners(c.UserContext(), orderID)
	if ok, err := ownership(c, owners, lookupErr, customerID); !ok {
		return err
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil || req.OrderDetailID == 0 || strings.TrimSpace(req.Content) == "" {
		return fail(c, fiber.StatusBadRequest, errcode.InvalidReview)
	}

	id, err := h.repo.PostReview(c.UserContext(), &models.Review{
		OrderID:       orderID,
		OrderDetailID: req.OrderDetailID,
		CustomerID:    customerID,
		Rating:        req.Rating,
		Content:       req.Content,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, errcode.Ambiguous)
	}
	if err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.ReviewInsert, err)
	}

	return success(c, fiber.Map{"id": id})
}

// Reviews lists the reviews written for an order owned by the customer.
func (h *CustomerHandler) Reviews(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	orderID := utils.ParamID(c, "orderId")
	owners, lookupErr := h.repo.GetOrderOwners(c.UserContext(), orderID)
	if ok, err := ownership(c, owners, lookupErr, customerID); !ok {
		return err
	}

	reviews, err := h.repo.GetReviews(c.UserContext(), orderID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, reviews)
}

// UpdateReview rewrites a review owned by the customer.
func (h *CustomerHandler) UpdateReview(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	reviewID := utils.ParamID(c, "reviewId")
	owners, lookupErr := h.repo.GetReviewOwners(c.UserContext(), utils.ParamID(c, "orderId"), reviewID)
	if ok, err := ownership(c, owners, lookupErr, customerID); !ok {
		return err
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil || strings.TrimSpace(req.Content) == "" {
		return fail(c, fiber.StatusBadRequest, errcode.InvalidReview)
	}

	if err := h.repo.UpdateReview(c.UserContext(), reviewID, req.Rating, req.Content); err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.ReviewUpdate, err)
	}
	return success(c, fiber.Map{"id": reviewID})
}

// DeleteReview removes a review owned by the customer.
func (h *CustomerHandler) DeleteReview(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	reviewID := utils.ParamID(c, "reviewId")
	owners, lookupErr := h.repo.GetReviewOwners(c.UserContext(), utils.ParamID(c, "orderId"), reviewID)
	if ok, err := ownership(c, owners, lookupErr, customerID); !ok {
		return err
	}

	if err := h.repo.DeleteReview(c.UserContext(), reviewID); err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.ReviewDelete, err)
	}
	return success(c, fiber.Map{"id": reviewID})
}
