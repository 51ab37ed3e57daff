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

func setupUserTest() (*mocks.UserService, *handlers.UserHandler) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)

	return mockUserService, userHandler
}

func TestUserRegister(t *testing.T) {
	t.Run("Success - New Account Created", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()

		registerRequest := models.RegisterRequest{
			Username: "jane",
			Email:    "jane@example.com",
			Password: "secret123",
		}
		requestBody, _ := json.Marshal(registerRequest)

		req := testutils.CreateTestRequest("POST", "/api/v1/users/register", bytes.NewBuffer(requestBody), nil, nil)
		recorder := httptest.NewRecorder()

		created := &models.User{ID: uuid.New(), Username: "jane", Email: "jane@example.com", Role: models.RoleUser, Active: true}
		mockUserService.On("Register", mock.Anything, mock.MatchedBy(func(req *models.RegisterRequest) bool {
			return req.Email == registerRequest.Email && req.Username == registerRequest.Username
		})).Return(created, nil).Once()

		// Act
		userHandler.Register()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusCreated, recorder.Code)

		var resp *response.APIResponse
		err := json.Unmarshal(recorder.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, resp.Success)

		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid Email", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()

		requestBody, _ := json.Marshal(models.RegisterRequest{
			Username: "jane",
			Email:    "not-an-email",
			Password: "secret123",
		})

		req := testutils.CreateTestRequest("POST", "/api/v1/users/register", bytes.NewBuffer(requestBody), nil, nil)
		recorder := httptest.NewRecorder()

		// Act
		userHandler.Register()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var resp *response.APIResponse
		err := json.Unmarshal(recorder.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, appErrors.ErrCodeValidation, resp.Error.Code)

		mockUserService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Email Already Registered", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()

		requestBody, _ := json.Marshal(models.RegisterRequest{
			Username: "jane",
			Email:    "jane@example.com",
			Password: "secret123",
		})

		req := testutils.CreateTestRequest("POST", "/api/v1/users/register", bytes.NewBuffer(requestBody), nil, nil)
		recorder := httptest.NewRecorder()

		mockError := appErrors.DuplicateEntryError("Email is already registered")
		mockUserService.On("Register", mock.Anything, mock.Anything).Return(nil, mockError).Once()

		// Act
		userHandler.Register()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusConflict, recorder.Code)

		mockUserService.AssertExpectations(t)
	})
}

func TestUserLogin(t *testing.T) {
	loginBody := func() *bytes.Buffer {
		body, _ := json.Marshal(models.LoginRequest{Email: "jane@example.com", Password: "secret123"})
		return bytes.NewBuffer(body)
	}

	t.Run("Success - Token Issued", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		req := testutils.CreateTestRequest("POST", "/api/v1/users/login", loginBody(), nil, nil)
		recorder := httptest.NewRecorder()

		mockUserService.On("Login", mock.Anything, mock.Anything).Return(&models.LoginResponse{
			Success:   true,
			Token:     "header.payload.signature",
			User:      &models.User{ID: uuid.New(), Email: "jane@example.com"},
			ExpiresIn: 86400,
		}, nil).Once()

		// Act
		userHandler.Login()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		var resp models.LoginResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)

		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Wrong Password", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		req := testutils.CreateTestRequest("POST", "/api/v1/users/login", loginBody(), nil, nil)
		recorder := httptest.NewRecorder()

		mockUserService.On("Login", mock.Anything, mock.Anything).Return(&models.LoginResponse{
			Success:        false,
			RemainingTries: 2,
			Message:        "Invalid email or password",
		}, nil).Once()

		// Act
		userHandler.Login()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)

		var resp models.LoginResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, 2, resp.RemainingTries)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		req := testutils.CreateTestRequest("POST", "/api/v1/users/login", loginBody(), nil, nil)
		recorder := httptest.NewRecorder()

		mockUserService.On("Login", mock.Anything, mock.Anything).Return(&models.LoginResponse{
			Success:    false,
			RetryAfter: 600,
			Message:    "Too many login attempts",
		}, nil).Once()

		// Act
		userHandler.Login()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)

		var resp models.LoginResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, 600, resp.RetryAfter)
	})

	t.Run("Failure - Missing Password", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		body, _ := json.Marshal(models.LoginRequest{Email: "jane@example.com"})
		req := testutils.CreateTestRequest("POST", "/api/v1/users/login", bytes.NewBuffer(body), nil, nil)
		recorder := httptest.NewRecorder()

		// Act
		userHandler.Login()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		mockUserService.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestUserProfile(t *testing.T) {
	t.Run("Success - Returns Principal", func(t *testing.T) {
		// Arrange
		_, userHandler := setupUserTest()
		user := testUser()
		req := testutils.CreateTestRequest("GET", "/api/v1/users/profile", nil, user, nil)
		recorder := httptest.NewRecorder()

		// Act
		userHandler.Profile()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		var resp *response.APIResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("Failure - Unauthorized", func(t *testing.T) {
		// Arrange
		_, userHandler := setupUserTest()
		req := testutils.CreateTestRequest("GET", "/api/v1/users/profile", nil, nil, nil)
		recorder := httptest.NewRecorder()

		// Act
		userHandler.Profile()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestUserUpdateAddress(t *testing.T) {
	t.Run("Success - Address Saved", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		user := testUser()

		address := models.Address{
			Street:     "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		}
		requestBody, _ := json.Marshal(address)

		req := testutils.CreateTestRequest("PUT", "/api/v1/users/address", bytes.NewBuffer(requestBody), user, nil)
		recorder := httptest.NewRecorder()

		updated := *user
		updated.Address = &address
		mockUserService.On("UpdateAddress", mock.Anything, user.ID, mock.MatchedBy(func(a *models.Address) bool {
			return a.City == "Springfield"
		})).Return(&updated, nil).Once()

		// Act
		userHandler.UpdateAddress()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Missing Required Fields", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		user := testUser()

		requestBody, _ := json.Marshal(models.Address{Street: "1 Main St"})
		req := testutils.CreateTestRequest("PUT", "/api/v1/users/address", bytes.NewBuffer(requestBody), user, nil)
		recorder := httptest.NewRecorder()

		// Act
		userHandler.UpdateAddress()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		mockUserService.AssertNotCalled(t, "UpdateAddress", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserUpdateProfile(t *testing.T) {
	t.Run("Failure - Wrong Current Password", func(t *testing.T) {
		// Arrange
		mockUserService, userHandler := setupUserTest()
		user := testUser()

		requestBody, _ := json.Marshal(models.UpdateProfileRequest{
			Username:        user.Username,
			Email:           user.Email,
			CurrentPassword: "wrong",
			NewPassword:     "newsecret1",
		})

		req := testutils.CreateTestRequest("PUT", "/api/v1/users/profile", bytes.NewBuffer(requestBody), user, nil)
		recorder := httptest.NewRecorder()

		mockError := appErrors.UnauthorizedError("Current password is incorrect")
		mockUserService.On("UpdateProfile", mock.Anything, user.ID, mock.Anything).Return(nil, mockError).Once()

		// Act
		userHandler.UpdateProfile()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)

		mockUserService.AssertExpectations(t)
	})
}
