package exchange

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/middleware"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

// ListExchanges возвращает обмены текущего пользователя
func (s *ExchangeService) ListExchanges(c fiber.Ctx) error {
	ctx, cancel := db.GetContext(0)
	defer cancel()

	views, err := s.List(ctx, middleware.CurrentUser(c), ListInput{
		Status: c.Query("estado"),
		Role:   c.Query("tipo"),
	})
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{"intercambios": views})
}

// GetExchange возвращает один обмен
func (s *ExchangeService) GetExchange(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	view, err := s.Get(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "intercambio": view})
}

// CreateExchange создает предложение обмена
func (s *ExchangeService) CreateExchange(c fiber.Ctx) error {
	var in CreateInput
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	view, created, err := s.Create(ctx, middleware.CurrentUser(c), in)
	if err != nil {
		return apperr.Respond(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"success":     true,
		"created":     created,
		"intercambio": view,
	})
}

// UpdateExchangeStatus меняет статус обмена
func (s *ExchangeService) UpdateExchangeStatus(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var req StatusChange
	if err := utils.BindJSON(c, &req); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	view, err := s.UpdateStatus(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "intercambio": view})
}

// ValidateMeeting принимает валидацию встречи (PATCH и POST)
func (s *ExchangeService) ValidateMeeting(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var in ValidationInput
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	result, err := s.Validate(ctx, middleware.CurrentUser(c), id, in)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}
