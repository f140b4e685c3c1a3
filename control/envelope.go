// Package control exposes the node manager over HTTP+JSON: one
// fiber.App, path-namespaced by instance name, translating each
// request into a call against that instance's *node.Manager.
package control

import "github.com/gofiber/fiber/v2"

// envelope is the uniform JSON response shape every endpoint returns:
// {status: "ok"|"error", data?, message?}.
type envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(envelope{Status: "ok", Data: data})
}

func fail(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(envelope{Status: "error", Message: err.Error()})
}
