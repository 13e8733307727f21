package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/inaciosamuel465/estateflow/internal/models"
	"github.com/inaciosamuel465/estateflow/internal/realtime"
	"github.com/inaciosamuel465/estateflow/internal/state"
)

// LeadAlertFunc forwards a new lead to the brokerage, typically by enqueuing
// an email task. Declared as a function type so the caller can wire the task
// client without this package depending on the tasks package.
type LeadAlertFunc func(ctx context.Context, leadName, message string) error

// Remote implements state.DataService over the Mongo-backed services. Every
// successful write republishes the affected collection's snapshot on the hub
// so other instances and stream subscribers converge.
type Remote struct {
	properties    IPropertyService
	contracts     IContractService
	users         IUserService
	chat          IChatService
	notifications INotificationService
	hub           *realtime.Hub
	alertLead     LeadAlertFunc
	log           zerolog.Logger
}

func NewRemote(
	properties IPropertyService,
	contracts IContractService,
	users IUserService,
	chat IChatService,
	notifications INotificationService,
	hub *realtime.Hub,
	alertLead LeadAlertFunc,
	log zerolog.Logger,
) *Remote {
	return &Remote{
		properties:    properties,
		contracts:     contracts,
		users:         users,
		chat:          chat,
		notifications: notifications,
		hub:           hub,
		alertLead:     alertLead,
		log:           log,
	}
}

var _ state.DataService = (*Remote)(nil)

// --- Properties ---

func (r *Remote) FetchProperties(ctx context.Context) ([]models.Property, error) {
	return r.properties.ListProperties(ctx)
}

func (r *Remote) CreateProperty(ctx context.Context, p models.Property) error {
	if err := r.properties.CreateProperty(ctx, p); err != nil {
		return err
	}
	r.publishProperties(ctx)
	return nil
}

func (r *Remote) UpdateProperty(ctx context.Context, id string, upd state.PropertyUpdate) error {
	if err := r.properties.UpdateProperty(ctx, id, upd); err != nil {
		return err
	}
	r.publishProperties(ctx)
	return nil
}

func (r *Remote) DeleteProperty(ctx context.Context, id string) error {
	if err := r.properties.DeleteProperty(ctx, id); err != nil {
		return err
	}
	r.publishProperties(ctx)
	return nil
}

// --- Contracts ---

func (r *Remote) FetchContracts(ctx context.Context) ([]models.Contract, error) {
	return r.contracts.ListContracts(ctx)
}

func (r *Remote) CreateContract(ctx context.Context, c models.Contract) error {
	if err := r.contracts.CreateContract(ctx, c); err != nil {
		return err
	}
	r.publishContracts(ctx)
	return nil
}

func (r *Remote) UpdateContract(ctx context.Context, id string, upd state.ContractUpdate) error {
	if err := r.contracts.UpdateContract(ctx, id, upd); err != nil {
		return err
	}
	r.publishContracts(ctx)
	return nil
}

func (r *Remote) DeleteContract(ctx context.Context, id string) error {
	if err := r.contracts.DeleteContract(ctx, id); err != nil {
		return err
	}
	r.publishContracts(ctx)
	return nil
}

// --- Users ---

func (r *Remote) FetchUsers(ctx context.Context) ([]models.User, error) {
	return r.users.ListUsers(ctx)
}

func (r *Remote) SetFavorites(ctx context.Context, userID, propertyID string) ([]string, error) {
	favorites, err := r.users.ToggleFavorite(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	r.publishUsers(ctx)
	return favorites, nil
}

// --- Conversations ---

func (r *Remote) FetchConversations(ctx context.Context) ([]models.Conversation, error) {
	return r.chat.ListConversations(ctx)
}

func (r *Remote) SaveMessage(ctx context.Context, convID string, msg models.ChatMessage, meta models.ConversationMeta) error {
	if err := r.chat.SaveMessage(ctx, convID, msg, meta); err != nil {
		return err
	}
	r.publishConversations(ctx)
	return nil
}

func (r *Remote) MarkConversationRead(ctx context.Context, convID string) error {
	if err := r.chat.MarkConversationRead(ctx, convID); err != nil {
		return err
	}
	r.publishConversations(ctx)
	return nil
}

// --- Notifications ---

func (r *Remote) FetchNotifications(ctx context.Context) ([]models.Notification, error) {
	return r.notifications.ListNotifications(ctx)
}

func (r *Remote) CreateNotification(ctx context.Context, n models.Notification) error {
	if err := r.notifications.CreateNotification(ctx, n); err != nil {
		return err
	}
	r.publishNotifications(ctx)
	return nil
}

// CreateLeadNotification persists the lead alert and also forwards it to the
// brokerage inbox when a lead alerter is wired.
func (r *Remote) CreateLeadNotification(ctx context.Context, n models.Notification, leadName string) error {
	if err := r.CreateNotification(ctx, n); err != nil {
		return err
	}
	if r.alertLead != nil {
		if err := r.alertLead(ctx, leadName, n.Message); err != nil {
			r.log.Error().Err(err).Str("lead", leadName).Msg("lead alert enqueue failed")
		}
	}
	return nil
}

func (r *Remote) MarkNotificationRead(ctx context.Context, id string) error {
	if err := r.notifications.MarkRead(ctx, id); err != nil {
		return err
	}
	r.publishNotifications(ctx)
	return nil
}

func (r *Remote) MarkAllNotificationsRead(ctx context.Context) error {
	if err := r.notifications.MarkAllRead(ctx); err != nil {
		return err
	}
	r.publishNotifications(ctx)
	return nil
}

func (r *Remote) ClearNotifications(ctx context.Context) error {
	if err := r.notifications.Clear(ctx); err != nil {
		return err
	}
	r.publishNotifications(ctx)
	return nil
}

// --- Snapshot publication ---

func (r *Remote) publishProperties(ctx context.Context) {
	props, err := r.properties.ListProperties(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to build property snapshot")
		return
	}
	r.publish(ctx, realtime.TopicProperties, props)
}

func (r *Remote) publishContracts(ctx context.Context) {
	contracts, err := r.contracts.ListContracts(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to build contract snapshot")
		return
	}
	r.publish(ctx, realtime.TopicContracts, contracts)
}

func (r *Remote) publishUsers(ctx context.Context) {
	users, err := r.users.ListUsers(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to build user snapshot")
		return
	}
	r.publish(ctx, realtime.TopicUsers, users)
}

func (r *Remote) publishConversations(ctx context.Context) {
	conversations, err := r.chat.ListConversations(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to build conversation snapshot")
		return
	}
	r.publish(ctx, realtime.TopicConversations, conversations)
}

func (r *Remote) publishNotifications(ctx context.Context) {
	notifications, err := r.notifications.ListNotifications(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to build notification snapshot")
		return
	}
	r.publish(ctx, realtime.TopicNotifications, notifications)
}

func (r *Remote) publish(ctx context.Context, topic string, payload any) {
	if r.hub == nil {
		return
	}
	if err := r.hub.Publish(ctx, topic, payload); err != nil {
		r.log.Error().Err(err).Str("topic", topic).Msg("snapshot publish failed")
	}
}
