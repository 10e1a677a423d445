package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/angagu/internal/config"
	"github.com/example/angagu/internal/errcode"
	"github.com/example/angagu/internal/repository"
	"github.com/example/angagu/internal/services"
	"github.com/example/angagu/internal/utils"
)

// VerificationHeader carries the phone-verification token on signup requests.
const VerificationHeader = "verification"

// CustomerHandler serves the /customer endpoints.
type CustomerHandler struct {
	repo   *repository.CustomerRepository
	sms    services.SMSGateway
	ledger services.TokenLedger
	cfg    *config.Config
	log    *logrus.Logger
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(repo *repository.CustomerRepository, sms services.SMSGateway, ledger services.TokenLedger, cfg *config.Config, log *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{repo: repo, sms: sms, ledger: ledger, cfg: cfg, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountView struct {
	ID          uint                `json:"id"`
	Email       string              `json:"email"`
	Name        string              `json:"name"`
	PhoneNumber string              `json:"phone_number,omitempty"`
	Type        utils.PrincipalType `json:"type"`
}

// Login authenticates a customer by email and password.
func (h *CustomerHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.IsEmail(req.Email) {
		return fail(c, fiber.StatusAccepted, errcode.Email)
	}

	customers, err := h.repo.GetCustomerByEmail(c.UserContext(), req.Email)
	if err != nil {
		return failWith(c, fiber.StatusInternalServerError, errcode.Database, err)
	}
	if len(customers) != 1 {
		return fail(c, fiber.StatusAccepted, errcode.Account)
	}

	user := customers[0]
	if !utils.CheckPassword(user.Password, req.Password) {
		return fail(c, fiber.StatusMethodNotAllowed, errcode.WrongPassword)
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, utils.Principal{ID: user.ID, Type: utils.PrincipalCustomer}, user.Email, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return success(c, fiber.Map{
		"user": accountView{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			PhoneNumber: user.PhoneNumber,
			Type:        utils.PrincipalCustomer,
		},
		"token": token,
	})
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup registers a customer whose phone number was verified beforehand.
func (h *CustomerHandler) Signup(c *fiber.Ctx) error {
	verified, ok := utils.ParseVerificationToken(h.cfg.JWTSecret, c.Get(VerificationHeader))
	if !ok {
		return fail(c, fiber.StatusNotFound, errcode.VerificationToken)
	}

	used, err := h.ledger.Used(c.UserContext(), verified.TokenID)
	if err != nil {
		return err
	}
	if used {
		return fail(c, fiber.StatusNotFound, errcode.VerificationToken)
	}

	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.IsPassword(req.Password) {
		return fail(c, fiber.StatusNotFound, errcode.Password)
	}
	if !utils.IsEmail(req.Email) {
		return fail(c, fiber.StatusNotFound, errcode.Email)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	id, err := h.repo.CustomerSignup(c.UserContext(), repository.SignupInput{
		Email:    req.Email,
		Password: hash,
		Name:     req.Name,
	}, verified.PhoneNumber)
	if errors.Is(err, repository.ErrDuplicate) {
		return fail(c, fiber.StatusNotFound, errcode.Duplicate)
	}
	if err != nil {
		h.log.WithError(err).Error("customer signup failed")
		return fail(c, fiber.StatusNotFound, errcode.Signup)
	}

	if err := h.ledger.MarkUsed(c.UserContext(), verified.TokenID, time.Until(verified.ExpiresAt)); err != nil {
		h.log.WithError(err).WithField("customer_id", id).Warn("failed to consume verification token")
	}

	return success(c, fiber.Map{"id": id})
}

type verifyCodeRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

// RequestVerifyCode sends an SMS verification code to a phone number.
func (h *CustomerHandler) RequestVerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.IsPhone(req.PhoneNumber) {
		return fail(c, fiber.StatusNotFound, errcode.Phone)
	}

	result, err := h.sms.SendCode(c.UserContext(), utils.NormalizePhone(req.PhoneNumber))
	if err != nil {
		h.log.WithError(err).Warn("verification code delivery failed")
		return fail(c, fiber.StatusNotFound, errcode.SendCode)
	}
	if result.StatusCode != services.StatusAccepted {
		return fail(c, fiber.StatusNotFound, errcode.SendCode)
	}

	return success(c, nil)
}

// ConfirmVerifyCode checks an SMS code and issues the verification token
// consumed by Signup.
func (h *CustomerHandler) ConfirmVerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	phone := utils.NormalizePhone(req.PhoneNumber)
	status, err := h.sms.CheckCode(c.UserContext(), phone, req.Code)
	if err != nil {
		return err
	}

	switch status {
	case services.CheckSuccess:
	case services.CheckWrongCode:
		return fail(c, fiber.StatusNotFound, errcode.WrongCode)
	default:
		return fail(c, fiber.StatusNotFound, errcode.VerifyFailed)
	}

	token, err := utils.GenerateVerificationToken(h.cfg.JWTSecret, phone, h.cfg.VerificationTTL)
	if err != nil {
		return err
	}

	return success(c, fiber.Map{"token": token})
}

type checkEmailRequest struct {
	Email string `json:"email"`
}

// CheckEmail reports whether an email address is still free.
func (h *CustomerHandler) CheckEmail(c *fiber.Ctx) error {
	var req checkEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.IsEmail(req.Email) {
		return fail(c, fiber.StatusNotFound, errcode.Email)
	}

	err := h.repo.CheckEmailDuplicate(c.UserContext(), req.Email)
	if errors.Is(err, repository.ErrEmailTaken) {
		return fail(c, fiber.StatusNotFound, errcode.EmailTaken)
	}
	if err != nil {
		return fail(c, fiber.StatusNotFound, errcode.Database)
	}

	return success(c, nil)
}
