// Package errcode holds the numeric application error codes returned in the
// data.errCode field of every failed response, together with their messages.
// The code → message pairs are part of the public API contract.
package errcode

// Code identifies a specific failure independent of the HTTP status.
type Code int

const (
	Unknown   Code = 0
	Database  Code = 100
	Email     Code = 101
	Account   Code = 102
	Password  Code = 103
	Phone     Code = 104
	Malformed Code = 105

	PrincipalType Code = 200
	Unauthorized  Code = 201

	ProductNotFound   Code = 300
	AddressInsert     Code = 301
	OrderInsert       Code = 302
	AddressDelete     Code = 303
	AddressUpdate     Code = 304
	AddressDefault    Code = 305
	Duplicate         Code = 306
	Signup            Code = 307
	ReviewInsert      Code = 308
	ReviewDelete      Code = 309
	ReviewUpdate      Code = 310
	BoardInsert       Code = 311
	ProductInsert     Code = 312
	ProductDelete     Code = 313
	DeliveryNumber    Code = 314
	Refund            Code = 315
	Approve           Code = 316
	OrderNotFound     Code = 317
	BusinessInfo      Code = 318
	BoardAnswer       Code = 319
	PasswordReset     Code = 320
	WrongCode         Code = 400
	VerifyFailed      Code = 401
	EmailTaken        Code = 402
	SendCode          Code = 403
	VerificationToken Code = 404
	WrongPassword     Code = 405
	InvalidAddress    Code = 501
	NotOwner          Code = 502
	Ambiguous         Code = 503
	InvalidReview     Code = 504
	InvalidProduct    Code = 505
	InvalidOrder      Code = 506
	InvalidBoard      Code = 507
)

var messages = map[Code]string{
	Unknown:           "unknown server error",
	Database:          "database error",
	Email:             "invalid email format",
	Account:           "account does not exist or is ambiguous",
	Password:          "invalid password format",
	Phone:             "invalid phone number format",
	Malformed:         "malformed request",
	PrincipalType:     "principal type is not permitted",
	Unauthorized:      "authorization token is missing or invalid",
	ProductNotFound:   "product does not exist",
	AddressInsert:     "failed to register address",
	OrderInsert:       "failed to place order",
	AddressDelete:     "failed to delete address",
	AddressUpdate:     "failed to update address",
	AddressDefault:    "failed to set default address",
	Duplicate:         "email or phone number already registered",
	Signup:            "failed to sign up",
	ReviewInsert:      "failed to register review",
	ReviewDelete:      "failed to delete review",
	ReviewUpdate:      "failed to update review",
	BoardInsert:       "failed to register board post",
	ProductInsert:     "failed to register product",
	ProductDelete:     "failed to delete product",
	DeliveryNumber:    "failed to register delivery number",
	Refund:            "failed to refund",
	Approve:           "failed to approve product",
	OrderNotFound:     "order does not exist",
	BusinessInfo:      "failed to update business information",
	BoardAnswer:       "failed to answer board post",
	PasswordReset:     "failed to reset password",
	WrongCode:         "wrong verification code",
	VerifyFailed:      "verification failed",
	EmailTaken:        "email already in use",
	SendCode:          "failed to send verification code",
	VerificationToken: "invalid verification token",
	WrongPassword:     "wrong password",
	InvalidAddress:    "invalid address",
	NotOwner:          "not the owner of the resource",
	Ambiguous:         "resource does not exist or is ambiguous",
	InvalidReview:     "invalid review",
	InvalidProduct:    "invalid product",
	InvalidOrder:      "invalid order",
	InvalidBoard:      "invalid board post",
}

// Message returns the message registered for code, or the message of Unknown.
func Message(code Code) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[Unknown]
}

// Table returns a copy of the full code table.
func Table() map[Code]string {
	out := make(map[Code]string, len(messages))
	for k, v := range messages {
		out[k] = v
	}
	return out
}
