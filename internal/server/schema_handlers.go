package server

import (
	"github.com/VlasovDmitriy/ParentHelperPro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"
)

// APISchema handles GET /api/schema/
// @Summary Machine-readable API schema
// @Description Raw Swagger document for generators and tooling; humans get /api/docs/
// @Tags schema
// @Produce json
// @Success 200 {object} object
// @Router /api/schema/ [get]
func (s *Server) APISchema(c *fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.SendString(doc)
}
