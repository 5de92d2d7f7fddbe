package admin

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/middleware"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

// CreateReport обрабатывает POST /api/reports
func (s *AdminService) CreateReport(c fiber.Ctx) error {
	var in ReportInput
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	r, err := s.Report(ctx, middleware.CurrentUser(c), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "reporte": r})
}

// GetReports обрабатывает GET /api/admin/reports
func (s *AdminService) GetReports(c fiber.Ctx) error {
	ctx, cancel := db.GetContext(0)
	defer cancel()

	reports, err := s.Reports(ctx, c.Query("estado"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"reportes": reports, "count": len(reports)})
}

// UpdateReport обрабатывает PATCH /api/admin/reports/:id
func (s *AdminService) UpdateReport(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var in ReviewInput
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	r, err := s.Review(ctx, middleware.CurrentUser(c), id, in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "reporte": r})
}

// VerifyUser обрабатывает PATCH /api/admin/users/:id/verify
func (s *AdminService) VerifyUser(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	user, err := s.Verify(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "usuario": user})
}

// SetUserActive обрабатывает PATCH /api/admin/users/:id/active
func (s *AdminService) SetUserActive(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var in ActiveInput
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	user, err := s.SetActive(ctx, middleware.CurrentUser(c), id, *in.Active)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "usuario": user})
}
