package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"circuitweb/internal/common"
	"circuitweb/internal/models"
	"circuitweb/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuthHandlersTestSuite struct {
	suite.Suite
	auth *MockAuthService
	e    *echo.Echo
}

func (suite *AuthHandlersTestSuite) SetupTest() {
	suite.auth = &MockAuthService{}
	suite.auth.Test(suite.T())

	h := NewAuthHandlers(suite.auth, zerolog.Nop())
	users := NewUserHandlers(suite.auth)
	suite.e = newTestServer()
	g := suite.e.Group("/api/auth")
	g.POST("/verify", h.VerifyToken)
	g.POST("/signup", h.SignUp)
	g.POST("/create-user", h.CreateUser)
	g.GET("/get-user", h.GetUser)
	g.PUT("/update-user", h.UpdateUser)
	g.PUT("/update-profile", h.UpdateProfile)
	g.DELETE("/delete-user", h.DeleteUser)
	g.POST("/set-custom-claims", h.SetCustomClaims)
	suite.e.GET("/api/users", users.ListUsers)
}

func (suite *AuthHandlersTestSuite) TearDownTest() {
	suite.auth.AssertExpectations(suite.T())
}

func TestAuthHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlersTestSuite))
}

func (suite *AuthHandlersTestSuite) TestVerify_InvalidToken() {
	suite.auth.On("VerifyUser", mock.Anything, "bad").Return(nil, fmt.Errorf("%w: expired", common.ErrUnauthenticated))

	rec := doJSON(suite.e, http.MethodPost, "/api/auth/verify", `{"idToken":"bad"}`, "")
	assertError(suite.T(), rec, http.StatusUnauthorized, "Invalid token")
}

func (suite *AuthHandlersTestSuite) TestVerify_AcceptsTokenField() {
	id := int64(7)
	suite.auth.On("VerifyUser", mock.Anything, "good").Return(&services.VerifiedUser{
		ID: &id, UID: "uid-1", Email: "ada@example.com", EmailVerified: true, DisplayName: "Ada",
	}, nil)

	rec := doJSON(suite.e, http.MethodPost, "/api/auth/verify", `{"token":"good"}`, "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	body := decodeBody(suite.T(), rec)
	assert.Equal(suite.T(), "Token verified successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(suite.T(), "uid-1", user["uid"])
	assert.Equal(suite.T(), float64(7), user["id"])
	assert.Equal(suite.T(), true, user["emailVerified"])
}

func (suite *AuthHandlersTestSuite) TestVerify_UserMissing() {
	suite.auth.On("VerifyUser", mock.Anything, "orphan").Return(nil, common.NotFound("provider user", "uid-x"))

	rec := doJSON(suite.e, http.MethodPost, "/api/auth/verify", `{"idToken":"orphan"}`, "")
	assertError(suite.T(), rec, http.StatusNotFound, "User not found")
}

func (suite *AuthHandlersTestSuite) TestSignUp_Registered() {
	suite.auth.On("SignIn", mock.Anything, services.SignInInput{
		IDToken: "tok", Email: "ada@example.com", DisplayName: "Ada",
	}).Return(&models.User{ID: 1, UID: "uid-1", Email: "ada@example.com", DisplayName: "Ada"}, true, nil)

	rec := doJSON(suite.e, http.MethodPost, "/api/auth/signup",
		`{"idToken":"tok","email":"ada@example.com","displayName":"Ada"}`, "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	body := decodeBody(suite.T(), rec)
	assert.Equal(suite.T(), "User registered successfully", body["message"])
	assert.Equal(suite.T(), "uid-1", body["user"].(map[string]interface{})["uid"])
}

func (suite *AuthHandlersTestSuite) TestSignUp_ExistingUserLogsIn() {
	suite.auth.On("SignIn", mock.Anything, mock.AnythingOfType("services.SignInInput")).
		Return(&models.User{ID: 1, UID: "uid-1"}, false, nil)

	rec := doJSON(suite.e, http.MethodPost, "/api/auth/signup", `{"idToken":"tok","provider":"google"}`, "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "User login successful", decodeBody(suite.T(), rec)["message"])
}

func (suite *AuthHandlersTestSuite) TestCreateUser_Validation() {
	rec := doJSON(suite.e, http.MethodPost, "/api/auth/create-user", `{"password":"secret1"}`, "")
	assertError(suite.T(), rec, http.StatusBadRequest, "Email is required")

	rec = doJSON(suite.e, http.MethodPost, "/api/auth/create-user", `{"email":"a@b.c"}`, "")
	assertError(suite.T(), rec, http.StatusBadRequest, "Password is required")
}

func (suite *AuthHandlersTestSuite) TestCreateUser() {
	suite.auth.On("CreateUser", mock.Anything, mock.MatchedBy(func(p *models.ProviderUserCreate) bool {
		return p.Email == "a@b.c" && p.Password == "secret1" && p.DisplayName != nil && *p.DisplayName == "A"
	})).Return(&models.ProviderUser{UID: "uid-9", Email: "a@b.c", DisplayName: "A"}, &models.User{ID: 9}, nil)

	rec := doJSON(suite.e, http.MethodPost, "/api/auth/create-user",
		`{"email":"a@b.c","password":"secret1","displayName":"A"}`, "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	user := decodeBody(suite.T(), rec)["user"].(map[string]interface{})
	assert.Equal(suite.T(), float64(9), user["id"])
	assert.Equal(suite.T(), "uid-9", user["uid"])
}

func (suite *AuthHandlersTestSuite) TestCreateUser_ProviderFailureSurfacesMessage() {
	suite.auth.On("CreateUser", mock.Anything, mock.Anything).Return(nil, nil, errors.New("EMAIL_EXISTS"))

	rec := doJSON(suite.e, http.MethodPost, "/api/auth/create-user", `{"email":"a@b.c","password":"secret1"}`, "")
	assertError(suite.T(), rec, http.StatusInternalServerError, "EMAIL_EXISTS")
}

func (suite *AuthHandlersTestSuite) TestGetUser() {
	rec := doJSON(suite.e, http.MethodGet, "/api/auth/get-user", "", "")
	assertError(suite.T(), rec, http.StatusBadRequest, "User UID is required")

	suite.auth.On("GetProviderUser", mock.Anything, "nobody").Return(nil, common.NotFound("provider user", "nobody"))
	rec = doJSON(suite.e, http.MethodGet, "/api/auth/get-user?uid=nobody", "", "")
	assertError(suite.T(), rec, http.StatusNotFound, "User not found")

	suite.auth.On("GetProviderUser", mock.Anything, "uid-1").
		Return(&models.ProviderUser{UID: "uid-1", Email: "ada@example.com", PhotoURL: "https://img"}, nil)
	rec = doJSON(suite.e, http.MethodGet, "/api/auth/get-user?uid=uid-1", "", "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	body := decodeBody(suite.T(), rec)
	assert.Equal(suite.T(), "User found", body["message"])
	assert.Equal(suite.T(), "https://img", body["user"].(map[string]interface{})["photoURL"])
}

func (suite *AuthHandlersTestSuite) TestUpdateUser() {
	suite.auth.On("UpdateUser", mock.Anything, "uid-1", mock.MatchedBy(func(p *models.ProviderUserUpdate) bool {
		return p.DisplayName != nil && *p.DisplayName == "Ada L" && p.Email == nil && p.Password == nil
	})).Return(&models.ProviderUser{UID: "uid-1", DisplayName: "Ada L"}, nil)

	rec := doJSON(suite.e, http.MethodPut, "/api/auth/update-user", `{"uid":"uid-1","displayName":"Ada L"}`, "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "User updated successfully", decodeBody(suite.T(), rec)["message"])
}

func (suite *AuthHandlersTestSuite) TestUpdateProfile() {
	rec := doJSON(suite.e, http.MethodPut, "/api/auth/update-profile", `{"displayName":"x"}`, "")
	assertError(suite.T(), rec, http.StatusBadRequest, "ID token is required")

	suite.auth.On("UpdateProfile", mock.Anything, "bad", mock.Anything).
		Return(nil, fmt.Errorf("%w: expired", common.ErrUnauthenticated))
	rec = doJSON(suite.e, http.MethodPut, "/api/auth/update-profile", `{"idToken":"bad","displayName":"x"}`, "")
	assertError(suite.T(), rec, http.StatusUnauthorized, "Invalid token")
}

func (suite *AuthHandlersTestSuite) TestUpdateProfile_VerifyOnlyProvider() {
	suite.auth.On("UpdateProfile", mock.Anything, "tok", mock.Anything).
		Return(nil, fmt.Errorf("update user: %w", common.ErrUnsupported))

	rec := doJSON(suite.e, http.MethodPut, "/api/auth/update-profile", `{"idToken":"tok","displayName":"x"}`, "")
	assert.Equal(suite.T(), http.StatusNotImplemented, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestDeleteUser() {
	suite.auth.On("DeleteUser", mock.Anything, "uid-1").Return(nil)

	rec := doJSON(suite.e, http.MethodDelete, "/api/auth/delete-user?uid=uid-1", "", "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "User deleted successfully", decodeBody(suite.T(), rec)["message"])
}

func (suite *AuthHandlersTestSuite) TestSetCustomClaims() {
	rec := doJSON(suite.e, http.MethodPost, "/api/auth/set-custom-claims", `{"uid":"uid-1","customClaims":{}}`, "")
	assertError(suite.T(), rec, http.StatusBadRequest, "Custom claims are required")

	suite.auth.On("SetCustomClaims", mock.Anything, "uid-1", map[string]interface{}{"admin": true}).Return(nil)
	rec = doJSON(suite.e, http.MethodPost, "/api/auth/set-custom-claims", `{"uid":"uid-1","customClaims":{"admin":true}}`, "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "Custom claims set successfully", decodeBody(suite.T(), rec)["message"])
}

func (suite *AuthHandlersTestSuite) TestListUsers_ReportsSource() {
	suite.auth.On("ListAllUsers", mock.Anything).
		Return([]*models.User{{ID: 1, UID: "uid-1"}}, services.UserSourceDatabase, nil)

	rec := doJSON(suite.e, http.MethodGet, "/api/users", "", "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	body := decodeBody(suite.T(), rec)
	assert.Equal(suite.T(), "database", body["source"])
	assert.Len(suite.T(), body["users"], 1)
}
