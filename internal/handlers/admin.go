package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/angagu/internal/config"
	"github.com/example/angagu/internal/errcode"
	"github.com/example/angagu/internal/repository"
	"github.com/example/angagu/internal/utils"
)

// AdminHandler serves the /admin endpoints.
type AdminHandler struct {
	repo *repository.AdminRepository
	cfg  *config.Config
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(repo *repository.AdminRepository, cfg *config.Config) *AdminHandler {
	return &AdminHandler{repo: repo, cfg: cfg}
}

// Login authenticates an admin by email and password.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.IsEmail(req.Email) {
		return fail(c, fiber.StatusAccepted, errcode.Email)
	}

	admins, err := h.repo.GetAdminByEmail(c.UserContext(), req.Email)
	if err != nil {
		return failWith(c, fiber.StatusInternalServerError, errcode.Database, err)
	}
	if len(admins) != 1 {
		return fail(c, fiber.StatusAccepted, errcode.Account)
	}

	admin := admins[0]
	if !utils.CheckPassword(admin.Password, req.Password) {
		return fail(c, fiber.StatusMethodNotAllowed, errcode.WrongPassword)
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, utils.Principal{ID: admin.ID, Type: utils.PrincipalAdmin}, admin.Email, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return success(c, fiber.Map{
		"user": accountView{
			ID:    admin.ID,
			Email: admin.Email,
			Name:  admin.Name,
			Type:  utils.PrincipalAdmin,
		},
		"token": token,
	})
}

// ApproveList pages through products waiting for approval.
func (h *AdminHandler) ApproveList(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	products, total, err := h.repo.GetApproveList(c.UserContext(), pg)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}

	return success(c, fiber.Map{
		"items": products,
		"total": total,
		"page":  pg.Page,
		"limit": pg.Limit,
	})
}

// Approve publishes a pending product.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	err := h.repo.ApproveProduct(c.UserContext(), utils.ParamID(c, "productId"))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, errcode.ProductNotFound)
	}
	if err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.Approve, err)
	}
	return success(c, nil)
}
