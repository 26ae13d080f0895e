package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
)

type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListRoleRequests handles GET /api/admin/role-requests?status=0.
func (h *AdminHandler) ListRoleRequests(c *fiber.Ctx) error {
	var status *domain.RoleRequestStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.RoleRequestStatus(c.QueryInt("status", 0))
		status = &s
	}

	page, err := h.admin.ListRoleRequests(c.UserContext(), status, pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// AuditRoleRequest handles POST /api/admin/role-requests/:id/audit.
func (h *AdminHandler) AuditRoleRequest(c *fiber.Ctx) error {
	requestID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body dto.AuditRoleRequestBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	if err := h.admin.AuditRoleRequest(c.UserContext(), middleware.GetUserID(c), requestID, body); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("request audited", nil))
}

// AuditResource handles POST /api/admin/resources/:id/audit.
func (h *AdminHandler) AuditResource(c *fiber.Ctx) error {
	resourceID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body dto.AuditResourceBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	if err := h.admin.AuditResource(c.UserContext(), middleware.GetUserID(c), resourceID, body); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("resource audited", nil))
}

// SetUserStatus handles POST /api/admin/users/:id/status.
func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	if err := h.admin.SetUserStatus(c.UserContext(), middleware.GetUserID(c), userID, body.Enabled); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("user status updated", nil))
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, err := h.admin.ListUsers(c.UserContext(), c.Query("keyword"), pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

func (h *AdminHandler) ListOperationLogs(c *fiber.Ctx) error {
	page, err := h.admin.ListOperationLogs(c.UserContext(), pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// ExportOperationLogs handles GET /api/admin/operation-logs/export,
// producing an XLSX download of the audit trail.
func (h *AdminHandler) ExportOperationLogs(c *fiber.Ctx) error {
	logs, err := h.admin.AllOperationLogs(c.UserContext())
	if err != nil {
		return fail(c, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Operation Logs"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fail(c, apperr.Internal(err))
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Operator", "Action", "Target Type", "Target ID", "Detail", "Time"}
	for i, head := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, head)
	}
	for row, entry := range logs {
		values := []interface{}{
			entry.ID, entry.OperatorName, entry.Action, entry.TargetType,
			entry.TargetID, entry.Detail, entry.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fail(c, apperr.Internal(err))
	}

	filename := fmt.Sprintf("operation-logs-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(stats))
}
