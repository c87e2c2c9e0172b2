package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"bookshelf/internal/models"
	"bookshelf/internal/query"
	"bookshelf/internal/service"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// MockAuthService mocks the service.AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, name, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	args := m.Called(ctx, email, oldPassword, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	args := m.Called(ctx, email, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

// MockUserService mocks the service.UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockBookService mocks the service.BookService interface
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) List(ctx context.Context, params query.ListParams) ([]models.Book, map[string]*models.User, query.Pagination, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, nil, query.Pagination{}, args.Error(3)
	}
	var authors map[string]*models.User
	if args.Get(1) != nil {
		authors = args.Get(1).(map[string]*models.User)
	}
	return args.Get(0).([]models.Book), authors, args.Get(2).(query.Pagination), args.Error(3)
}

func (m *MockBookService) GetByID(ctx context.Context, id string) (*models.Book, *models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var author *models.User
	if args.Get(1) != nil {
		author = args.Get(1).(*models.User)
	}
	return args.Get(0).(*models.Book), author, args.Error(2)
}

func (m *MockBookService) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookService) Update(ctx context.Context, id string, book *models.Book) (*models.Book, *models.User, error) {
	args := m.Called(ctx, id, book)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var author *models.User
	if args.Get(1) != nil {
		author = args.Get(1).(*models.User)
	}
	return args.Get(0).(*models.Book), author, args.Error(2)
}

func (m *MockBookService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
