package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/angagu/internal/errcode"
	"github.com/example/angagu/internal/repository"
	"github.com/example/angagu/internal/utils"
)

type addressRequest struct {
	Name        string  `json:"name"`
	Recipient   *string `json:"recipient"`
	PhoneNumber string  `json:"phone_number"`
	Road        *string `json:"road"`
	Land        *string `json:"land"`
	Detail      *string `json:"detail"`
	Zipcode     string  `json:"zipcode"`
	IsDefault   bool    `json:"is_default"`
}

// input checks that exactly one of road and land is given along with the
// recipient and the detail line.
func (r addressRequest) input() (repository.AddressInput, bool) {
	road, hasRoad := present(r.Road)
	land, hasLand := present(r.Land)
	if hasRoad == hasLand {
		return repository.AddressInput{}, false
	}
	recipient, ok := present(r.Recipient)
	if !ok {
		return repository.AddressInput{}, false
	}
	detail, ok := present(r.Detail)
	if !ok {
		return repository.AddressInput{}, false
	}
	if r.PhoneNumber != "" && !utils.IsPhone(r.PhoneNumber) {
		return repository.AddressInput{}, false
	}

	in := repository.AddressInput{
		Name:        strings.TrimSpace(r.Name),
		Recipient:   recipient,
		PhoneNumber: utils.NormalizePhone(r.PhoneNumber),
		Detail:      detail,
		Zipcode:     strings.TrimSpace(r.Zipcode),
		IsDefault:   r.IsDefault,
	}
	if hasRoad {
		in.Road = &road
	} else {
		in.Land = &land
	}
	return in, true
}

func present(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

// GetAddress lists the customer's addresses.
func (h *CustomerHandler) GetAddress(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	addresses, err := h.repo.GetAddresses(c.UserContext(), customerID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, addresses)
}

// PostAddress registers a delivery address.
func (h *CustomerHandler) PostAddress(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	in, valid := req.input()
	if !valid {
		return fail(c, fiber.StatusBadRequest, errcode.InvalidAddress)
	}

	id, err := h.repo.PostAddress(c.UserContext(), customerID, in)
	if err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.AddressInsert, err)
	}
	return success(c, fiber.Map{"id": id})
}

// DeleteAddress removes an address owned by the customer.
func (h *CustomerHandler) DeleteAddress(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	addressID := utils.ParamID(c, "addressId")
	owners, lookupErr := h.repo.GetCustomerByAddress(c.UserContext(), addressID)
	if ok, err := ownership(c, owners, lookupErr, customerID); !ok {
		return err
	}

	if err := h.repo.DeleteAddress(c.UserContext(), addressID); err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.AddressDelete)
	}
	return success(c, fiber.Map{"id": addressID})
}

// PutAddress replaces an address owned by the customer.
func (h *CustomerHandler) PutAddress(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	addressID := utils.ParamID(c, "addressId")
	owners, lookupErr := h.repo.GetCustomerByAddress(c.UserContext(), addressID)
	if ok, err := ownership(c, owners, lookupErr, customerID); !ok {
		return err
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	in, valid := req.input()
	if !valid {
		return fail(c, fiber.StatusBadRequest, errcode.InvalidAddress)
	}

	if err := h.repo.PutAddress(c.UserContext(), addressID, in); err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.AddressUpdate)
	}
	return success(c, fiber.Map{"id": addressID})
}

// SetDefaultAddress marks an address owned by the customer as the default.
func (h *CustomerHandler) SetDefaultAddress(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	addressID := utils.ParamID(c, "addressId")
	owners, lookupErr := h.repo.GetCustomerByAddress(c.UserContext(), addressID)
	if ok, err := ownership(c, owners, lookupErr, customerID); !ok {
		return err
	}

	if err := h.repo.SetDefaultAddress(c.UserContext(), customerID, addressID); err != nil {
		return failWith(c, fiber.StatusBadRequest, errcode.AddressDefault, err)
	}
	return success(c, fiber.Map{"id": addressID})
}

// GetDefaultAddress returns the customer's default address.
func (h *CustomerHandler) GetDefaultAddress(c *fiber.Ctx) error {
	customerID, ok, err := customer(c)
	if !ok {
		return err
	}

	address, err := h.repo.GetDefaultAddress(c.UserContext(), customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, errcode.Ambiguous)
	}
	if err != nil {
		return fail(c, fiber.StatusBadRequest, errcode.Database)
	}
	return success(c, address)
}
