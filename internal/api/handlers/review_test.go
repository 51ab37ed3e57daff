package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/api/handlers"
	appErrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	"github.com/shopora/shopora-platform/internal/services/mocks"
	"github.com/shopora/shopora-platform/internal/testutils"
	"github.com/shopora/shopora-platform/internal/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupReviewTest() (*mocks.ReviewService, *handlers.ReviewHandler) {
	mockReviewService := new(mocks.ReviewService)
	reviewHandler := handlers.NewReviewHandler(mockReviewService)

	return mockReviewService, reviewHandler
}

func TestReviewCreate(t *testing.T) {
	t.Run("Success - Review Created", func(t *testing.T) {
		// Arrange
		mockReviewService, reviewHandler := setupReviewTest()
		user := testUser()
		productID := uuid.New()

		createRequest := models.CreateReviewRequest{Rating: 5, Comment: "Great product"}
		requestBody, _ := json.Marshal(createRequest)

		req := testutils.CreateTestRequest("POST", "/api/v1/products/"+productID.String()+"/reviews",
			bytes.NewBuffer(requestBody), user, map[string]string{"productId": productID.String()})
		recorder := httptest.NewRecorder()

		created := &models.Review{
			ID:        uuid.New(),
			UserID:    user.ID,
			ProductID: productID,
			Rating:    5,
			Comment:   "Great product",
			Username:  user.Username,
		}
		mockReviewService.On("CreateReview", mock.Anything, user, productID, mock.MatchedBy(func(req *models.CreateReviewRequest) bool {
			return req.Rating == 5
		})).Return(created, nil).Once()

		// Act
		reviewHandler.Create()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusCreated, recorder.Code)

		var resp *response.APIResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		mockReviewService.AssertExpectations(t)
	})

	t.Run("Failure - Not Eligible", func(t *testing.T) {
		// Arrange
		mockReviewService, reviewHandler := setupReviewTest()
		user := testUser()
		productID := uuid.New()

		requestBody, _ := json.Marshal(models.CreateReviewRequest{Rating: 4, Comment: "Fine"})
		req := testutils.CreateTestRequest("POST", "/api/v1/products/"+productID.String()+"/reviews",
			bytes.NewBuffer(requestBody), user, map[string]string{"productId": productID.String()})
		recorder := httptest.NewRecorder()

		mockReviewService.On("CreateReview", mock.Anything, user, productID, mock.Anything).
			Return(nil, appErrors.NotEligibleError()).Once()

		// Act
		reviewHandler.Create()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, recorder.Code)

		var resp *response.APIResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, appErrors.ErrCodeNotEligible, resp.Error.Code)
	})

	t.Run("Failure - Already Reviewed", func(t *testing.T) {
		// Arrange
		mockReviewService, reviewHandler := setupReviewTest()
		user := testUser()
		productID := uuid.New()

		requestBody, _ := json.Marshal(models.CreateReviewRequest{Rating: 4, Comment: "Fine"})
		req := testutils.CreateTestRequest("POST", "/api/v1/products/"+productID.String()+"/reviews",
			bytes.NewBuffer(requestBody), user, map[string]string{"productId": productID.String()})
		recorder := httptest.NewRecorder()

		mockReviewService.On("CreateReview", mock.Anything, user, productID, mock.Anything).
			Return(nil, appErrors.AlreadyReviewedError()).Once()

		// Act
		reviewHandler.Create()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var resp *response.APIResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, appErrors.ErrCodeAlreadyReviewed, resp.Error.Code)
	})

	t.Run("Failure - Rating Out Of Range", func(t *testing.T) {
		// Arrange
		mockReviewService, reviewHandler := setupReviewTest()
		user := testUser()
		productID := uuid.New()

		requestBody, _ := json.Marshal(models.CreateReviewRequest{Rating: 6, Comment: "Too good"})
		req := testutils.CreateTestRequest("POST", "/api/v1/products/"+productID.String()+"/reviews",
			bytes.NewBuffer(requestBody), user, map[string]string{"productId": productID.String()})
		recorder := httptest.NewRecorder()

		// Act
		reviewHandler.Create()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		mockReviewService.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReviewListByProduct(t *testing.T) {
	t.Run("Success - Public Listing", func(t *testing.T) {
		// Arrange
		mockReviewService, reviewHandler := setupReviewTest()
		productID := uuid.New()

		req := testutils.CreateTestRequest("GET", "/api/v1/products/"+productID.String()+"/reviews",
			nil, nil, map[string]string{"productId": productID.String()})
		recorder := httptest.NewRecorder()

		reviews := []*models.Review{{ID: uuid.New(), ProductID: productID, Rating: 5}}
		mockReviewService.On("ListReviewsByProduct", mock.Anything, productID).Return(reviews, nil).Once()

		// Act
		reviewHandler.ListByProduct()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		mockReviewService.AssertExpectations(t)
	})
}

func TestReviewUpdate(t *testing.T) {
	t.Run("Success - Review Updated", func(t *testing.T) {
		// Arrange
		mockReviewService, reviewHandler := setupReviewTest()
		user := testUser()
		reviewID := uuid.New()

		updateRequest := models.UpdateReviewRequest{Rating: 3, Comment: "Changed my mind"}
		requestBody, _ := json.Marshal(updateRequest)

		req := testutils.CreateTestRequest("PUT", "/api/v1/reviews/"+reviewID.String(),
			bytes.NewBuffer(requestBody), user, map[string]string{"id": reviewID.String()})
		recorder := httptest.NewRecorder()

		updated := &models.Review{
			ID:      reviewID,
			UserID:  user.ID,
			Rating:  3,
			Comment: "Changed my mind",
		}
		mockReviewService.On("UpdateReview", mock.Anything, user, reviewID, mock.MatchedBy(func(req *models.UpdateReviewRequest) bool {
			return req.Rating == 3
		})).Return(updated, nil).Once()

		// Act
		reviewHandler.Update()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		var resp response.APIResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		mockReviewService.AssertExpectations(t)
	})

	t.Run("Failure - Not The Author", func(t *testing.T) {
		// Arrange
		mockReviewService, reviewHandler := setupReviewTest()
		user := testUser()
		reviewID := uuid.New()

		updateRequest := models.UpdateReviewRequest{Rating: 1, Comment: "Terrible"}
		requestBody, _ := json.Marshal(updateRequest)

		req := testutils.CreateTestRequest("PUT", "/api/v1/reviews/"+reviewID.String(),
			bytes.NewBuffer(requestBody), user, map[string]string{"id": reviewID.String()})
		recorder := httptest.NewRecorder()

		mockReviewService.On("UpdateReview", mock.Anything, user, reviewID, mock.Anything).
			Return(nil, appErrors.ForbiddenError("You can only edit your own reviews")).Once()

		// Act
		reviewHandler.Update()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		mockReviewService.AssertExpectations(t)
	})
}

func TestReviewDelete(t *testing.T) {
	t.Run("Success - Owner Deletes Review", func(t *testing.T) {
		// Arrange
		mockReviewService, reviewHandler := setupReviewTest()
		user := testUser()
		reviewID := uuid.New()

		req := testutils.CreateTestRequest("DELETE", "/api/v1/reviews/"+reviewID.String(), nil, user,
			map[string]string{"id": reviewID.String()})
		recorder := httptest.NewRecorder()

		mockReviewService.On("DeleteReview", mock.Anything, user, reviewID).Return(nil).Once()

		// Act
		reviewHandler.Delete()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		mockReviewService.AssertExpectations(t)
	})

	t.Run("Failure - Stranger Forbidden", func(t *testing.T) {
		// Arrange
		mockReviewService, reviewHandler := setupReviewTest()
		user := testUser()
		reviewID := uuid.New()

		req := testutils.CreateTestRequest("DELETE", "/api/v1/reviews/"+reviewID.String(), nil, user,
			map[string]string{"id": reviewID.String()})
		recorder := httptest.NewRecorder()

		mockError := appErrors.ForbiddenError("You can only delete your own reviews")
		mockReviewService.On("DeleteReview", mock.Anything, user, reviewID).Return(mockError).Once()

		// Act
		reviewHandler.Delete()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
