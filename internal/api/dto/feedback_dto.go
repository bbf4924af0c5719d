package dto

import "time"

// FeedbackRequest payload for submitting or revising feedback.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// FeedbackResponse model.
type FeedbackResponse struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaintId"`
	UserID      string    `json:"userId"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FeedbackComplaint is the complaint summary embedded in feedback listings.
type FeedbackComplaint struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Status       string  `json:"status"`
	AssignedTo   *string `json:"assignedTo"`
	DepartmentID *string `json:"departmentId"`
}

// FeedbackEntryResponse is one row of the feedback listing.
type FeedbackEntryResponse struct {
	FeedbackResponse
	AuthorName string            `json:"authorName"`
	Complaint  FeedbackComplaint `json:"complaint"`
}

// FeedbackStatsResponse summarizes ratings.
type FeedbackStatsResponse struct {
	TotalFeedbacks     int         `json:"totalFeedbacks"`
	AverageRating      float64     `json:"averageRating"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}
