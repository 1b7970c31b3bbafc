package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	log           *logger.Logger
}

func NewReviewHandler(reviewService service.ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, log: log}
}

// ReviewRequest ratings are range-checked by the service so the error
// message is the same for every field.
type ReviewRequest struct {
	Rating    int              `json:"rating"`
	SubScores domain.SubScores `json:"subScores"`
	Comment   string           `json:"comment"`
}

func (r ReviewRequest) toInput() service.ReviewInput {
	return service.ReviewInput{Rating: r.Rating, SubScores: r.SubScores, Comment: r.Comment}
}

type ReviewResponse struct {
	ID        string           `json:"id"`
	AuthorID  string           `json:"authorId"`
	TrainerID string           `json:"trainerId"`
	Rating    int              `json:"rating"`
	SubScores domain.SubScores `json:"subScores"`
	Comment   string           `json:"comment,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type TrainerStatsResponse struct {
	TrainerID     string                  `json:"trainerId"`
	TotalReviews  int                     `json:"totalReviews"`
	AverageRating float64                 `json:"averageRating"`
	SubScores     domain.SubScoreAverages `json:"subScores"`
	Distribution  map[int]int             `json:"distribution"`
	Recent        []ReviewResponse        `json:"recent"`
}

func MapReviewToResponse(r *domain.Review) ReviewResponse {
	if r == nil {
		return ReviewResponse{}
	}
	return ReviewResponse{
		ID:        r.ID.Hex(),
		AuthorID:  r.AuthorID.Hex(),
		TrainerID: r.TrainerID.Hex(),
		Rating:    r.Rating,
		SubScores: r.SubScores,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func MapReviewsToResponse(reviews []domain.Review) []ReviewResponse {
	responses := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		responses[i] = MapReviewToResponse(&reviews[i])
	}
	return responses
}

func MapTrainerStatsToResponse(s *domain.TrainerStats) TrainerStatsResponse {
	if s == nil {
		return TrainerStatsResponse{}
	}
	return TrainerStatsResponse{
		TrainerID:     s.TrainerID.Hex(),
		TotalReviews:  s.TotalReviews,
		AverageRating: s.AverageRating,
		SubScores:     s.SubScores,
		Distribution:  s.Distribution,
		Recent:        MapReviewsToResponse(s.Recent),
	}
}

// CreateReview godoc
// @Summary Review a trainer
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Param review body ReviewRequest true "Review"
// @Success 201 {object} ReviewResponse
// @Failure 409 {object} gin.H "Already reviewed"
// @Router /trainers/{trainerId}/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	trainerID, ok := pathObjectID(c, "trainerId")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	authorID, ok := currentUser(c)
	if !ok {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), authorID, trainerID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapReviewToResponse(review))
}

// ListTrainerReviews godoc
// @Summary A trainer's reviews, newest first
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {array} ReviewResponse
// @Router /trainers/{trainerId}/reviews [get]
func (h *ReviewHandler) ListTrainerReviews(c *gin.Context) {
	trainerID, ok := pathObjectID(c, "trainerId")
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListTrainerReviews(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapReviewsToResponse(reviews))
}

// TrainerStats godoc
// @Summary Aggregated rating statistics for a trainer
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {object} TrainerStatsResponse
// @Router /trainers/{trainerId}/stats [get]
func (h *ReviewHandler) TrainerStats(c *gin.Context) {
	trainerID, ok := pathObjectID(c, "trainerId")
	if !ok {
		return
	}
	stats, err := h.reviewService.TrainerStats(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainerStatsToResponse(stats))
}

// UpdateReview godoc
// @Summary Edit the caller's review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reviewId path string true "Review ID"
// @Param review body ReviewRequest true "Review"
// @Success 200 {object} ReviewResponse
// @Failure 403 {object} gin.H "Not the author"
// @Router /reviews/{reviewId} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, ok := pathObjectID(c, "reviewId")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	authorID, ok := currentUser(c)
	if !ok {
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), authorID, reviewID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapReviewToResponse(review))
}

// DeleteReview godoc
// @Summary Delete the caller's review
// @Tags Reviews
// @Security BearerAuth
// @Param reviewId path string true "Review ID"
// @Success 204
// @Router /reviews/{reviewId} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := pathObjectID(c, "reviewId")
	if !ok {
		return
	}
	authorID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), authorID, reviewID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
