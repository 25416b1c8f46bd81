package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/expenseflow/internal/handlers"
	"github.com/SscSPs/expenseflow/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "test-secret-key-that-is-long-enough"

// handlerSuite wires every route group against mocked services, the way RegisterRoutes does.
type handlerSuite struct {
	suite.Suite
	router *gin.Engine

	userService     *MockUserService
	tokenService    *MockTokenService
	expenseService  *MockExpenseService
	approvalService *MockApprovalService
	categoryService *MockCategoryService
	currencyService *MockCurrencyService
}

func (s *handlerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidators()
}

func (s *handlerSuite) SetupTest() {
	s.userService = new(MockUserService)
	s.tokenService = new(MockTokenService)
	s.expenseService = new(MockExpenseService)
	s.approvalService = new(MockApprovalService)
	s.categoryService = new(MockCategoryService)
	s.currencyService = new(MockCurrencyService)

	s.router = gin.New()
	handlers.RegisterAuthRoutes(s.router.Group("/api/v1"), s.userService, s.tokenService, nil)

	v1 := s.router.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret))
	handlers.RegisterUserRoutes(v1, s.userService)
	handlers.RegisterExpenseRoutes(v1, s.expenseService)
	handlers.RegisterApprovalRoutes(v1, s.approvalService)
	handlers.RegisterCategoryRoutes(v1, s.categoryService)
	handlers.RegisterCurrencyRoutes(v1, s.currencyService)
}

func (s *handlerSuite) TearDownTest() {
	s.userService.AssertExpectations(s.T())
	s.tokenService.AssertExpectations(s.T())
	s.expenseService.AssertExpectations(s.T())
	s.approvalService.AssertExpectations(s.T())
	s.categoryService.AssertExpectations(s.T())
	s.currencyService.AssertExpectations(s.T())
}

// generateTestToken creates a signed HS256 token for userID.
func (s *handlerSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "expenseflow-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

// do serves a request. A non-empty userID authenticates it, a non-nil body is sent as JSON.
func (s *handlerSuite) do(method, url, userID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		default:
			var err error
			raw, err = json.Marshal(body)
			s.Require().NoError(err)
		}
		reader = bytes.NewReader(raw)
	}

	var req *http.Request
	if reader != nil {
		req = httptest.NewRequest(method, url, reader)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.generateTestToken(userID))
	}
	req.Header.Set("Accept", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *handlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
