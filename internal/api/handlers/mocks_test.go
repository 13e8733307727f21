package handlers_test

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

// --- Mocks ---

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, name, email, phone, password string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, name, email, phone, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id string, name, phone, avatar *string) error {
	args := m.Called(ctx, id, name, phone, avatar)
	return args.Error(0)
}

func (m *MockUserService) ToggleFavorite(ctx context.Context, userID, propertyID string) ([]string, error) {
	args := m.Called(ctx, userID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) CreateContract(ctx context.Context, c models.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractService) FindContractByID(ctx context.Context, id string) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *MockContractService) ListContracts(ctx context.Context) ([]models.Contract, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *MockContractService) ListExpiringContracts(ctx context.Context, within time.Duration) ([]models.Contract, error) {
	args := m.Called(ctx, within)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *MockContractService) UpdateContract(ctx context.Context, id string, upd state.ContractUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockContractService) DeleteContract(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContractService) FinancialTotals(ctx context.Context) (state.FinancialSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(state.FinancialSummary), args.Error(1)
}

type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

// nopDataService satisfies state.DataService for handler tests that only
// exercise the in-memory store.
type nopDataService struct{}

func (nopDataService) FetchProperties(context.Context) ([]models.Property, error) { return nil, nil }
func (nopDataService) CreateProperty(context.Context, models.Property) error      { return nil }
func (nopDataService) UpdateProperty(context.Context, string, state.PropertyUpdate) error {
	return nil
}
func (nopDataService) DeleteProperty(context.Context, string) error             { return nil }
func (nopDataService) FetchContracts(context.Context) ([]models.Contract, error) { return nil, nil }
func (nopDataService) CreateContract(context.Context, models.Contract) error    { return nil }
func (nopDataService) UpdateContract(context.Context, string, state.ContractUpdate) error {
	return nil
}
func (nopDataService) DeleteContract(context.Context, string) error        { return nil }
func (nopDataService) FetchUsers(context.Context) ([]models.User, error)   { return nil, nil }
func (nopDataService) SetFavorites(context.Context, string, string) ([]string, error) {
	return nil, nil
}
func (nopDataService) FetchConversations(context.Context) ([]models.Conversation, error) {
	return nil, nil
}
func (nopDataService) SaveMessage(context.Context, string, models.ChatMessage, models.ConversationMeta) error {
	return nil
}
func (nopDataService) MarkConversationRead(context.Context, string) error { return nil }
func (nopDataService) FetchNotifications(context.Context) ([]models.Notification, error) {
	return nil, nil
}
func (nopDataService) CreateNotification(context.Context, models.Notification) error { return nil }
func (nopDataService) CreateLeadNotification(context.Context, models.Notification, string) error {
	return nil
}
func (nopDataService) MarkNotificationRead(context.Context, string) error { return nil }
func (nopDataService) MarkAllNotificationsRead(context.Context) error     { return nil }
func (nopDataService) ClearNotifications(context.Context) error           { return nil }

// favoritesDataService returns a fixed favorites set, standing in for the
// remote toggle computation.
type favoritesDataService struct {
	nopDataService
	favorites []string
}

func (f favoritesDataService) SetFavorites(context.Context, string, string) ([]string, error) {
	return f.favorites, nil
}

func newTestController() *state.Controller {
	return newTestControllerWith(nopDataService{})
}

func newTestControllerWith(remote state.DataService) *state.Controller {
	return state.NewController(state.NewStore(), remote, zerolog.Nop(), "anonymous")
}
