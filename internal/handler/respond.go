package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
)

// fail maps a service error onto the response envelope. Business
// failures (validation, conflicts) travel as success=false with a 200
// status; auth and infrastructure problems use the matching HTTP code.
func fail(c *fiber.Ctx, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		return c.JSON(dto.Fail(apperr.MessageOf(err)))
	case apperr.KindUnauthorized:
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(apperr.MessageOf(err)))
	case apperr.KindForbidden:
		return c.Status(fiber.StatusForbidden).JSON(dto.Fail(apperr.MessageOf(err)))
	case apperr.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail(apperr.MessageOf(err)))
	case apperr.KindRateLimited:
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.Fail(apperr.MessageOf(err)))
	default:
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("internal error"))
	}
}

func pagination(c *fiber.Ctx) dto.Pagination {
	return dto.NormalizePagination(
		c.QueryInt("page", 1),
		c.QueryInt("pageSize", dto.DefaultPageSize),
	)
}

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid id")
	}
	return uint(id), nil
}
