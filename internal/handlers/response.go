package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/angagu/internal/errcode"
	"github.com/example/angagu/internal/middleware"
	"github.com/example/angagu/internal/utils"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// envelope is the body of every API response.
type envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

type failure struct {
	ErrCode errcode.Code `json:"errCode"`
	Err     string       `json:"err,omitempty"`
}

func success(c *fiber.Ctx, data interface{}) error {
	if data == nil {
		data = fiber.Map{}
	}
	return c.Status(fiber.StatusOK).JSON(envelope{Status: statusSuccess, Data: data})
}

func fail(c *fiber.Ctx, status int, code errcode.Code) error {
	return c.Status(status).JSON(envelope{
		Status:  statusError,
		Data:    failure{ErrCode: code},
		Message: errcode.Message(code),
	})
}

// failWith also reports the underlying cause, as the database failure
// responses do.
func failWith(c *fiber.Ctx, status int, code errcode.Code, err error) error {
	body := failure{ErrCode: code}
	if err != nil {
		body.Err = err.Error()
	}
	return c.Status(status).JSON(envelope{
		Status:  statusError,
		Data:    body,
		Message: errcode.Message(code),
	})
}

// ErrorHandler translates errors escaping a handler into the envelope. Client
// errors raised with fiber.NewError keep their status; anything else is an
// unknown server error.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			if fe.Code == fiber.StatusNotFound || fe.Code == fiber.StatusMethodNotAllowed {
				return c.Status(fe.Code).JSON(envelope{Status: statusError, Data: fiber.Map{}, Message: fe.Message})
			}
			return fail(c, fe.Code, errcode.Malformed)
		}

		log.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).WithError(err).Error("unhandled request error")

		return fail(c, fiber.StatusInternalServerError, errcode.Unknown)
	}
}

// customer returns the authenticated customer id, writing the principal type
// rejection when the caller is some other kind of principal.
func customer(c *fiber.Ctx) (uint, bool, error) {
	return principalOf(c, utils.PrincipalCustomer)
}

func company(c *fiber.Ctx) (uint, bool, error) {
	return principalOf(c, utils.PrincipalCompany)
}

func principalOf(c *fiber.Ctx, want utils.PrincipalType) (uint, bool, error) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return 0, false, fail(c, fiber.StatusForbidden, errcode.Unauthorized)
	}
	if principal.Type != want {
		return 0, false, fail(c, fiber.StatusForbidden, errcode.PrincipalType)
	}
	return principal.ID, true, nil
}

// ownership runs the exists and owned gates shared by every mutation on a
// customer or company owned resource. lookupErr is the failure of the owner
// lookup itself. ok is false when a response has already been written.
func ownership(c *fiber.Ctx, owners []uint, lookupErr error, principalID uint) (bool, error) {
	if lookupErr != nil {
		return false, failWith(c, fiber.StatusBadRequest, errcode.Database, lookupErr)
	}
	if len(owners) != 1 {
		return false, fail(c, fiber.StatusNotFound, errcode.Ambiguous)
	}
	if owners[0] != principalID {
		return false, fail(c, fiber.StatusForbidden, errcode.NotOwner)
	}
	return true, nil
}
