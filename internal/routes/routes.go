package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/angagu/internal/handlers"
	"github.com/example/angagu/internal/middleware"
	"github.com/example/angagu/internal/utils"
)

// Handlers groups the endpoint handlers mounted by Register.
type Handlers struct {
	Customer *handlers.CustomerHandler
	Company  *handlers.CompanyHandler
	Admin    *handlers.AdminHandler
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, h Handlers, jwtSecret string) {
	auth := middleware.Authorization(jwtSecret)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"title": "ANGAGU", "version": "1.0"})
	})
	app.Get("/metrics", middleware.MetricsHandler())

	customer := app.Group("/customer")
	customer.Post("/login", h.Customer.Login)
	customer.Get("/products", h.Customer.Products)
	customer.Get("/products/:productId", h.Customer.ProductDetail)
	customer.Get("/products/:productId/ar", h.Customer.ModelURL)
	customer.Get("/products/:productId/board", h.Customer.ProductBoard)
	customer.Post("/products/:productId/board", auth, h.Customer.PostProductBoard)

	customer.Get("/order", auth, h.Customer.OrderList)
	customer.Post("/order", auth, h.Customer.PostOrder)
	customer.Get("/order/:orderId", auth, h.Customer.OrderDetail)
	customer.Post("/order/:orderId/review", auth, h.Customer.PostReview)
	customer.Get("/order/:orderId/review", auth, h.Customer.Reviews)
	customer.Put("/order/:orderId/review/:reviewId", auth, h.Customer.UpdateReview)
	customer.Delete("/order/:orderId/review/:reviewId", auth, h.Customer.DeleteReview)

	customer.Post("/signup", h.Customer.Signup)
	customer.Post("/signup/sms/code", h.Customer.RequestVerifyCode)
	customer.Post("/signup/sms/verification", h.Customer.ConfirmVerifyCode)
	customer.Post("/signup/email", h.Customer.CheckEmail)

	customer.Get("/address", auth, h.Customer.GetAddress)
	customer.Post("/address", auth, h.Customer.PostAddress)
	customer.Get("/address/default", auth, h.Customer.GetDefaultAddress)
	customer.Post("/address/default/:addressId", auth, h.Customer.SetDefaultAddress)
	customer.Put("/address/:addressId", auth, h.Customer.PutAddress)
	customer.Delete("/address/:addressId", auth, h.Customer.DeleteAddress)

	company := app.Group("/company")
	company.Post("/login", h.Company.Login)
	company.Post("/signup", h.Company.Signup)
	company.Post("/find/id", h.Company.FindID)
	company.Post("/find/password/code", h.Company.RequestPasswordCode)
	company.Put("/find/password", h.Company.ResetPassword)

	// Guards stay per route so unmatched /company paths still answer 404.
	seller := middleware.RequireType(utils.PrincipalCompany)
	company.Get("/products", auth, seller, h.Company.Products)
	company.Post("/products", auth, seller, h.Company.PostProduct)
	company.Delete("/products/:productId", auth, seller, h.Company.DeleteProduct)
	company.Get("/sale", auth, seller, h.Company.Sale)
	company.Get("/order", auth, seller, h.Company.Orders)
	company.Put("/order/:orderDetailId/delivery", auth, seller, h.Company.AddDeliveryNumber)
	company.Post("/refund/:orderDetailId", auth, seller, h.Company.Refund)
	company.Get("/info", auth, seller, h.Company.Info)
	company.Post("/info/business", auth, seller, h.Company.UpdateBusiness)
	company.Get("/board", auth, seller, h.Company.Board)
	company.Put("/board/:boardId", auth, seller, h.Company.AnswerBoard)

	admin := app.Group("/admin")
	admin.Post("/login", h.Admin.Login)

	operator := middleware.RequireType(utils.PrincipalAdmin)
	admin.Get("/approve", auth, operator, h.Admin.ApproveList)
	admin.Put("/approve/:productId", auth, operator, h.Admin.Approve)
}
