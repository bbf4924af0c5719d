package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/yashitanamdeo/janmat-sub001/internal/api/dto"
	"github.com/yashitanamdeo/janmat-sub001/internal/auth"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return defaultVal
	}
	return parsed
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		Role:         string(user.Role),
		DepartmentID: user.DepartmentID,
		Designation:  user.Designation,
	}
}

func complaintResponse(c *domain.Complaint) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ID:           c.ID,
		UserID:       c.UserID,
		Title:        c.Title,
		Description:  c.Description,
		Location:     c.Location,
		Urgency:      c.Urgency,
		Status:       c.Status,
		DepartmentID: c.DepartmentID,
		AssignedTo:   c.AssignedTo,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		ResolvedAt:   c.ResolvedAt,
		ArchivedAt:   c.ArchivedAt,
	}
}

func complaintDetail(c *domain.Complaint, timeline []domain.TimelineEntry) dto.ComplaintDetailResponse {
	entries := make([]dto.TimelineEntryResponse, 0, len(timeline))
	for _, e := range timeline {
		entries = append(entries, dto.TimelineEntryResponse{
			ID:        e.ID,
			Status:    e.Status,
			Comment:   e.Comment,
			UpdatedBy: e.UpdatedBy,
			CreatedAt: e.CreatedAt,
		})
	}
	return dto.ComplaintDetailResponse{ComplaintResponse: complaintResponse(c), Timeline: entries}
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		Description: dept.Description,
		IsActive:    dept.IsActive,
	}
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func feedbackResponse(f *domain.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:          f.ID,
		ComplaintID: f.ComplaintID,
		UserID:      f.UserID,
		Rating:      f.Rating,
		Comment:     f.Comment,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// emptyToNil treats "" like an omitted id.
func emptyToNil(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
