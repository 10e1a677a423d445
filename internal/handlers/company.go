package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/angagu/internal/config"
	"github.com/example/angagu/internal/errcode"
	"github.com/example/angagu/internal/repository"
	"github.com/example/angagu/internal/services"
	"github.com/example/angagu/internal/storage"
	"github.com/example/angagu/internal/utils"
)

// ProductNotifier announces products that wait for admin approval.
type ProductNotifier interface {
	NotifyPendingProduct(p services.ProductNotification) error
}

// CompanyHandler serves the /company endpoints.
type CompanyHandler struct {
	repo     *repository.CompanyRepository
	sms      services.SMSGateway
	uploader storage.Uploader
	notifier ProductNotifier
	cfg      *config.Config
	log      *logrus.Logger
}

// NewCompanyHandler constructs CompanyHandler.
func NewCompanyHandler(
	repo *repository.CompanyRepository,
	sms services.SMSGateway,
	uploader storage.Uploader,
	notifier ProductNotifier,
	cfg *config.Config,
	log *logrus.Logger,
) *CompanyHandler {
	return &CompanyHandler{
		repo:     repo,
		sms:      sms,
		uploader: uploader,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}
}

// Login authenticates a company by email and password.
func (h *CompanyHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.IsEmail(req.Email) {
		return fail(c, fiber.StatusAccepted, errcode.Email)
	}

	companies, err := h.repo.GetCompanyByEmail(c.UserContext(), req.Email)
	if err != nil {
		return failWith(c, fiber.StatusInternalServerError, errcode.Database, err)
	}
	if len(companies) != 1 {
		return fail(c, fiber.StatusAccepted, errcode.Account)
	}

	account := companies[0]
	if !utils.CheckPassword(account.Password, req.Password) {
		return fail(c, fiber.StatusMethodNotAllowed, errcode.WrongPassword)
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, utils.Principal{ID: account.ID, Type: utils.PrincipalCompany}, account.Email, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return success(c, fiber.Map{
		"user": accountView{
			ID:          account.ID,
			Email:       account.Email,
			Name:        account.Name,
			PhoneNumber: account.PhoneNumber,
			Type:        utils.PrincipalCompany,
		},
		"token": token,
	})
}

type companySignupRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number"`
	BusinessNumber string `json:"business_number"`
	AccountNumber  string `json:"account_number"`
	AccountHolder  string `json:"account_holder"`
	AccountBank    string `json:"account_bank"`
}

// Signup registers a seller account.
func (h *CompanyHandler) Signup(c *fiber.Ctx) error {
	var req companySignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !utils.IsPassword(req.Password) {
		return fail(c, fiber.StatusNotFound, errcode.Password)
	}
	if !utils.IsEmail(req.Email) {
		return fail(c, fiber.StatusNotFound, errcode.Email)
	}
	if !utils.IsPhone(req.PhoneNumber) {
		return fail(c, fiber.StatusNotFound, errcode.Phone)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fail(c, fiber.StatusNotFound, errcode.Signup)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	id, err := h.repo.CompanySignup(c.UserContext(), repository.CompanySignupInput{
		Email:          req.Email,
		Password:       hash,
		Name:           strings.TrimSpace(req.Name),
		PhoneNumber:    utils.NormalizePhone(req.PhoneNumber),
		BusinessNumber: req.BusinessNumber,
		AccountNumber:  req.AccountNumber,
		AccountHolder:  req.AccountHolder,
		AccountBank:    req.AccountBank,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return fail(c, fiber.StatusNotFound, errcode.Duplicate)
	}
	if err != nil {
		h.log.WithError(err).Error("company signup failed")
		return fail(c, fiber.StatusNotFound, errcode.Signup)
	}

	return success(c, fiber.Map{"id": id})
}

type findIDRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// FindID recovers the login email from the company name and phone number.
func (h *CompanyHandler) FindID(c *fiber.Ctx) error {
	var req findIDRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !utils.IsPhone(req.PhoneNumber) {
		return fail(c, fiber.StatusNotFound, errcode.Phone)
	}

	email, err := h.repo.GetIDByNameAndPhone(c.UserContext(), strings.TrimSpace(req.Name), utils.NormalizePhone(req.PhoneNumber))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, errcode.Account)
	}
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}

	return success(c, fiber.Map{"email": email})
}

type passwordCodeRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// RequestPasswordCode sends a reset code to the phone of the matching company.
func (h *CompanyHandler) RequestPasswordCode(c *fiber.Ctx) error {
	var req passwordCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !utils.IsEmail(req.Email) {
		return fail(c, fiber.StatusNotFound, errcode.Email)
	}
	if !utils.IsPhone(req.PhoneNumber) {
		return fail(c, fiber.StatusNotFound, errcode.Phone)
	}

	phone := utils.NormalizePhone(req.PhoneNumber)
	_, err := h.repo.GetUserByEmailNamePhone(c.UserContext(), req.Email, strings.TrimSpace(req.Name), phone)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, errcode.Account)
	}
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}

	result, err := h.sms.SendCode(c.UserContext(), phone)
	if err != nil {
		h.log.WithError(err).Warn("password reset code delivery failed")
		return fail(c, fiber.StatusNotFound, errcode.SendCode)
	}
	if result.StatusCode != services.StatusAccepted {
		return fail(c, fiber.StatusNotFound, errcode.SendCode)
	}

	return success(c, nil)
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
	Password    string `json:"password"`
}

// ResetPassword replaces the password after the SMS code is confirmed.
func (h *CompanyHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !utils.IsPassword(req.Password) {
		return fail(c, fiber.StatusNotFound, errcode.Password)
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

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	err = h.repo.UpdatePassword(c.UserContext(), req.Email, phone, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, errcode.Account)
	}
	if err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.PasswordReset, err)
	}

	return success(c, nil)
}

// Info returns the authenticated company profile.
func (h *CompanyHandler) Info(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	info, err := h.repo.GetInfo(c.UserContext(), companyID)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, errcode.Account)
	}
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, info)
}

type businessRequest struct {
	BusinessNumber string `json:"business_number" validate:"required,max=32"`
	AccountNumber  string `json:"account_number" validate:"required,max=64"`
	AccountHolder  string `json:"account_holder" validate:"required,max=64"`
	AccountBank    string `json:"account_bank" validate:"required,max=64"`
}

// UpdateBusiness stores the settlement account of the authenticated company.
func (h *CompanyHandler) UpdateBusiness(c *fiber.Ctx) error {
	companyID, ok, err := company(c)
	if !ok {
		return err
	}

	var req businessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fail(c, fiber.StatusNotFound, errcode.BusinessInfo)
	}

	if err := h.repo.UpdateBusinessInfo(c.UserContext(), companyID, repository.BusinessInfo{
		BusinessNumber: req.BusinessNumber,
		AccountNumber:  req.AccountNumber,
		AccountHolder:  req.AccountHolder,
		AccountBank:    req.AccountBank,
	}); err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.BusinessInfo, err)
	}

	return success(c, nil)
}
