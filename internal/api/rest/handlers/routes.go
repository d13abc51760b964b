package handlers

import "github.com/gofiber/fiber/v2"

// Routes is the router tree shared by all handlers.
type Routes struct {
	API     fiber.Router  // /api
	Members fiber.Router  // /api/members
	Self    fiber.Router  // /api/members/:memberID, token owner or admin
	Auth    fiber.Handler // bearer token with a live session
}
