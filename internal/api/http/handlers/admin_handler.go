package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yashitanamdeo/janmat-sub001/internal/api/dto"
	"github.com/yashitanamdeo/janmat-sub001/internal/service"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

// AdminHandler serves the administrator dashboard endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		TotalComplaints:      stats.TotalComplaints,
		PendingComplaints:    stats.PendingComplaints,
		InProgressComplaints: stats.InProgressComplaints,
		ResolvedComplaints:   stats.ResolvedComplaints,
		RejectedComplaints:   stats.RejectedComplaints,
		TotalUsers:           stats.TotalUsers,
		TotalOfficers:        stats.TotalOfficers,
	}})
}

// ListOfficers GET /admin/officers.
func (h *AdminHandler) ListOfficers(c *fiber.Ctx) error {
	officers, err := h.admin.ListOfficers(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.OfficerResponse, 0, len(officers))
	for i := range officers {
		summary := officers[i]
		items = append(items, dto.OfficerResponse{
			UserResponse:       userResponse(&summary.Officer),
			AssignedComplaints: summary.AssignedComplaints,
			OpenComplaints:     summary.OpenComplaints,
			ResolvedComplaints: summary.ResolvedComplaints,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// AssignComplaint POST /admin/complaints/:id/assign.
func (h *AdminHandler) AssignComplaint(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.OfficerID) == "" {
		return apperrors.NewValidationError("officerId is required", nil)
	}
	complaint, err := h.admin.AssignComplaint(c.UserContext(), user, c.Params("id"), req.OfficerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// SetOfficerDepartment PATCH /admin/officers/:id/department.
func (h *AdminHandler) SetOfficerDepartment(c *fiber.Ctx) error {
	var req dto.OfficerDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	officer, err := h.admin.SetOfficerDepartment(c.UserContext(), c.Params("id"), req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(officer)})
}

// CreateOfficer POST /admin/officers.
func (h *AdminHandler) CreateOfficer(c *fiber.Ctx) error {
	var req dto.OfficerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	officer, err := h.admin.CreateOfficer(c.UserContext(), officerInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(officer)})
}

// UpdateOfficer PUT /admin/officers/:id.
func (h *AdminHandler) UpdateOfficer(c *fiber.Ctx) error {
	var req dto.OfficerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	officer, err := h.admin.UpdateOfficer(c.UserContext(), c.Params("id"), officerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(officer)})
}

// UpdateComplaintDepartment PATCH /admin/complaints/:id/department.
func (h *AdminHandler) UpdateComplaintDepartment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ComplaintDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.admin.UpdateComplaintDepartment(c.UserContext(), user, c.Params("id"), emptyToNil(req.DepartmentID), req.OfficerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

func officerInput(req dto.OfficerRequest) service.OfficerInput {
	return service.OfficerInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		DepartmentID: emptyToNil(req.DepartmentID),
		Designation:  req.Designation,
	}
}

// ListDepartments GET /admin/departments.
func (h *AdminHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.admin.ListDepartments(c.UserContext(), c.QueryBool("includeInactive", false))
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, departmentResponse(&departments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateDepartment POST /admin/departments.
func (h *AdminHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.admin.CreateDepartment(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": departmentResponse(dept)})
}
