package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yashitanamdeo/janmat-sub001/internal/api/dto"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/service"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

// ComplaintsHandler manages complaint endpoints for every role.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.Create(c.UserContext(), user, service.ComplaintCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Urgency:      domain.Urgency(strings.ToUpper(string(req.Urgency))),
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	complaints, err := h.service.List(c.UserContext(), user, parseComplaintQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintResponse(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	complaint, timeline, err := h.service.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, timeline)})
}

// UpdateStatus PATCH /complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status := domain.ComplaintStatus(strings.ToUpper(string(req.Status)))
	complaint, err := h.service.UpdateStatus(c.UserContext(), user, c.Params("id"), status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

func parseComplaintQuery(c *fiber.Ctx) service.ComplaintListFilter {
	filter := service.ComplaintListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ComplaintStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if urgencyStr := c.Query("urgency"); urgencyStr != "" {
		for _, part := range strings.Split(urgencyStr, ",") {
			filter.Urgencies = append(filter.Urgencies, domain.Urgency(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if dept := strings.TrimSpace(c.Query("departmentId")); dept != "" {
		filter.DepartmentID = &dept
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "pageSize", 20)
	if pageSize > 100 {
		pageSize = 100
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}
