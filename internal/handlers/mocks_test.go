package handlers

import (
	"context"

	"circuitweb/internal/models"
	"circuitweb/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) VerifyToken(ctx context.Context, idToken string) (string, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) VerifyUser(ctx context.Context, idToken string) (*services.VerifiedUser, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.VerifiedUser), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, input services.SignInInput) (*models.User, bool, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockAuthService) GetProviderUser(ctx context.Context, uid string) (*models.ProviderUser, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderUser), args.Error(1)
}

func (m *MockAuthService) CreateUser(ctx context.Context, params *models.ProviderUserCreate) (*models.ProviderUser, *models.User, error) {
	args := m.Called(ctx, params)
	var pu *models.ProviderUser
	var u *models.User
	if args.Get(0) != nil {
		pu = args.Get(0).(*models.ProviderUser)
	}
	if args.Get(1) != nil {
		u = args.Get(1).(*models.User)
	}
	return pu, u, args.Error(2)
}

func (m *MockAuthService) UpdateUser(ctx context.Context, uid string, params *models.ProviderUserUpdate) (*models.ProviderUser, error) {
	args := m.Called(ctx, uid, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderUser), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, idToken string, params *models.ProviderUserUpdate) (*models.ProviderUser, error) {
	args := m.Called(ctx, idToken, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderUser), args.Error(1)
}

func (m *MockAuthService) DeleteUser(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockAuthService) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	args := m.Called(ctx, uid, claims)
	return args.Error(0)
}

func (m *MockAuthService) ListAllUsers(ctx context.Context) ([]*models.User, string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) SyncProviderUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	args := m.Called(ctx, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	args := m.Called(ctx, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectService) Duplicate(ctx context.Context, id, newName string) (*models.Project, error) {
	args := m.Called(ctx, id, newName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Authorize(ctx context.Context, id, callerID string) (*models.Project, error) {
	args := m.Called(ctx, id, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

type MockCircuitService struct {
	mock.Mock
}

func (m *MockCircuitService) ListByProject(ctx context.Context, projectID string) ([]*models.Circuit, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Circuit), args.Error(1)
}

func (m *MockCircuitService) Get(ctx context.Context, id string) (*models.Circuit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Circuit), args.Error(1)
}

func (m *MockCircuitService) Create(ctx context.Context, circuit *models.Circuit) (*models.Circuit, error) {
	args := m.Called(ctx, circuit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Circuit), args.Error(1)
}

func (m *MockCircuitService) Update(ctx context.Context, circuit *models.Circuit) (*models.Circuit, error) {
	args := m.Called(ctx, circuit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Circuit), args.Error(1)
}

func (m *MockCircuitService) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCircuitService) CreateFromTemplate(ctx context.Context, templateID, projectID, name string) (*models.Circuit, error) {
	args := m.Called(ctx, templateID, projectID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Circuit), args.Error(1)
}

func (m *MockCircuitService) Templates(ctx context.Context) []models.CircuitTemplate {
	args := m.Called(ctx)
	return args.Get(0).([]models.CircuitTemplate)
}

func (m *MockCircuitService) Authorize(ctx context.Context, id, callerID string) (*models.Circuit, error) {
	args := m.Called(ctx, id, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Circuit), args.Error(1)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) Upload(ctx context.Context, in *models.UploadInput) (*models.UploadResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadResult), args.Error(1)
}

func (m *MockStorageService) UploadCircuitImage(ctx context.Context, circuitID string, in *models.UploadInput) (*models.UploadResult, error) {
	args := m.Called(ctx, circuitID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadResult), args.Error(1)
}

func (m *MockStorageService) FileURL(ctx context.Context, filePath string) (string, error) {
	args := m.Called(ctx, filePath)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) Delete(ctx context.Context, filePath string) (bool, error) {
	args := m.Called(ctx, filePath)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorageService) List(ctx context.Context, folder string) ([]*models.StoredFile, error) {
	args := m.Called(ctx, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StoredFile), args.Error(1)
}

func (m *MockStorageService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }
