package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/yashitanamdeo/janmat-sub001/internal/api/dto"
	"github.com/yashitanamdeo/janmat-sub001/internal/service"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

// FeedbackHandler serves complaint ratings.
type FeedbackHandler struct {
	feedback *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedback *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// Submit POST /complaints/:id/feedback.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	feedback, err := h.feedback.Submit(c.UserContext(), user, c.Params("id"), service.FeedbackInput{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": feedbackResponse(feedback)})
}

// Update PUT /complaints/:id/feedback.
func (h *FeedbackHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	feedback, err := h.feedback.Update(c.UserContext(), user, c.Params("id"), service.FeedbackInput{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback)})
}

// Get GET /complaints/:id/feedback.
func (h *FeedbackHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	feedback, err := h.feedback.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback)})
}

// List GET /feedback.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	entries, err := h.feedback.List(c.UserContext(), user)
	if err != nil {
		return err
	}
	items := make([]dto.FeedbackEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		items = append(items, dto.FeedbackEntryResponse{
			FeedbackResponse: feedbackResponse(&e.Feedback),
			AuthorName:       e.AuthorName,
			Complaint: dto.FeedbackComplaint{
				ID:           e.ComplaintID,
				Title:        e.ComplaintTitle,
				Status:       string(e.ComplaintStatus),
				AssignedTo:   e.AssignedTo,
				DepartmentID: e.DepartmentID,
			},
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /feedback/stats.
func (h *FeedbackHandler) Stats(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := h.feedback.Stats(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FeedbackStatsResponse{
		TotalFeedbacks:     stats.Total,
		AverageRating:      stats.Average,
		RatingDistribution: stats.Distribution,
	}})
}
