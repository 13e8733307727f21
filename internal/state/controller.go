package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/inaciosamuel465/estateflow/internal/models"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
)

// DataService is the remote persistence boundary the Controller writes
// through. The Mongo-backed services package provides the production
// implementation.
type DataService interface {
	FetchProperties(ctx context.Context) ([]models.Property, error)
	CreateProperty(ctx context.Context, p models.Property) error
	UpdateProperty(ctx context.Context, id string, upd PropertyUpdate) error
	DeleteProperty(ctx context.Context, id string) error

	FetchContracts(ctx context.Context) ([]models.Contract, error)
	CreateContract(ctx context.Context, c models.Contract) error
	UpdateContract(ctx context.Context, id string, upd ContractUpdate) error
	DeleteContract(ctx context.Context, id string) error

	FetchUsers(ctx context.Context) ([]models.User, error)
	SetFavorites(ctx context.Context, userID string, propertyID string) ([]string, error)

	FetchConversations(ctx context.Context) ([]models.Conversation, error)
	SaveMessage(ctx context.Context, convID string, msg models.ChatMessage, meta models.ConversationMeta) error
	MarkConversationRead(ctx context.Context, convID string) error

	FetchNotifications(ctx context.Context) ([]models.Notification, error)
	CreateNotification(ctx context.Context, n models.Notification) error
	CreateLeadNotification(ctx context.Context, n models.Notification, leadName string) error
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	ClearNotifications(ctx context.Context) error
}

// Controller applies every domain mutation optimistically: the store is
// changed first, then the remote write is issued. A failed remote write is
// logged and returned to the caller, but the local change stands. The store
// snapshot stays responsive and the subscription bridge reconciles it on the
// next remote snapshot.
type Controller struct {
	store  *Store
	remote DataService
	log    zerolog.Logger

	anonymousChatID string

	// now is swapped in tests.
	now func() time.Time
}

func NewController(store *Store, remote DataService, log zerolog.Logger, anonymousChatID string) *Controller {
	if anonymousChatID == "" {
		anonymousChatID = "anonymous"
	}
	return &Controller{
		store:           store,
		remote:          remote,
		log:             log,
		anonymousChatID: anonymousChatID,
		now:             time.Now,
	}
}

func (c *Controller) Store() *Store { return c.store }

// LoadInitial replaces every collection with fresh remote snapshots. Called
// once on startup and again whenever the remote connection is re-established.
func (c *Controller) LoadInitial(ctx context.Context) error {
	props, err := c.remote.FetchProperties(ctx)
	if err != nil {
		return fmt.Errorf("failed to load properties: %w", err)
	}
	contracts, err := c.remote.FetchContracts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load contracts: %w", err)
	}
	users, err := c.remote.FetchUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	convs, err := c.remote.FetchConversations(ctx)
	if err != nil {
		return fmt.Errorf("failed to load conversations: %w", err)
	}
	notifs, err := c.remote.FetchNotifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}
	c.store.SetProperties(props)
	c.store.SetContracts(contracts)
	c.store.SetUsers(users)
	c.store.SetConversations(convs)
	c.ApplyNotifications(notifs)
	return nil
}

// --- Properties ---

func (c *Controller) AddProperty(ctx context.Context, p models.Property) (models.Property, error) {
	p.GenIDIfEmpty()
	if p.Status == "" {
		p.Status = models.PropertyAvailable
	}
	now := c.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	c.store.prependProperty(p)
	if err := c.remote.CreateProperty(ctx, p); err != nil {
		c.log.Error().Err(err).Str("property_id", p.ID).Msg("remote property create failed, local copy kept")
		return p, fmt.Errorf("failed to persist property: %w", err)
	}

	notif := models.NewPropertyNotification(p.Title, "added to the catalogue", now)
	c.store.prependNotification(notif)
	if err := c.remote.CreateNotification(ctx, notif); err != nil {
		c.log.Error().Err(err).Str("notification_id", notif.ID).Msg("failed to persist property notification")
	}
	return p, nil
}

func (c *Controller) UpdateProperty(ctx context.Context, id string, upd PropertyUpdate) error {
	if !c.store.updateProperty(id, upd) {
		return ErrNotFound
	}
	if err := c.remote.UpdateProperty(ctx, id, upd); err != nil {
		c.log.Error().Err(err).Str("property_id", id).Msg("remote property update failed, local copy kept")
		return fmt.Errorf("failed to persist property update: %w", err)
	}
	return nil
}

func (c *Controller) DeleteProperty(ctx context.Context, id string) error {
	if !c.store.removeProperty(id) {
		return ErrNotFound
	}
	if err := c.remote.DeleteProperty(ctx, id); err != nil {
		c.log.Error().Err(err).Str("property_id", id).Msg("remote property delete failed, local copy kept")
		return fmt.Errorf("failed to delete property: %w", err)
	}
	return nil
}

// --- Contracts ---

// AddContract inserts the contract, denormalizes the property and party
// fields onto it, and cascades the property status: a rent contract marks the
// property rented, a sale contract marks it sold.
func (c *Controller) AddContract(ctx context.Context, contract models.Contract) (models.Contract, error) {
	contract.GenIDIfEmpty()
	if contract.Status == "" {
		contract.Status = models.ContractActive
	}
	now := c.now()
	contract.CreatedAt = now
	contract.UpdatedAt = now

	if prop, ok := c.store.PropertyByID(contract.PropertyID); ok {
		contract.PropertyTitle = prop.Title
		contract.PropertyImage = prop.Image
		if contract.OwnerID == "" {
			contract.OwnerID = prop.OwnerID
		}
	}
	if u, ok := c.store.UserByID(contract.ClientID); ok {
		contract.ClientName = u.Name
		contract.ClientPhone = u.Phone
	}
	if u, ok := c.store.UserByID(contract.OwnerID); ok {
		contract.OwnerName = u.Name
		contract.OwnerPhone = u.Phone
	}

	c.store.prependContract(contract)
	if err := c.remote.CreateContract(ctx, contract); err != nil {
		c.log.Error().Err(err).Str("contract_id", contract.ID).Msg("remote contract create failed, local copy kept")
		return contract, fmt.Errorf("failed to persist contract: %w", err)
	}

	status := models.PropertyRented
	if contract.Type == models.ContractSale {
		status = models.PropertySold
	}
	if err := c.UpdateProperty(ctx, contract.PropertyID, PropertyUpdate{Status: &status}); err != nil && !errors.Is(err, ErrNotFound) {
		return contract, err
	}
	return contract, nil
}

func (c *Controller) UpdateContract(ctx context.Context, id string, upd ContractUpdate) error {
	if !c.store.updateContract(id, upd) {
		return ErrNotFound
	}
	if err := c.remote.UpdateContract(ctx, id, upd); err != nil {
		c.log.Error().Err(err).Str("contract_id", id).Msg("remote contract update failed, local copy kept")
		return fmt.Errorf("failed to persist contract update: %w", err)
	}
	return nil
}

func (c *Controller) DeleteContract(ctx context.Context, id string) error {
	if !c.store.removeContract(id) {
		return ErrNotFound
	}
	if err := c.remote.DeleteContract(ctx, id); err != nil {
		c.log.Error().Err(err).Str("contract_id", id).Msg("remote contract delete failed, local copy kept")
		return fmt.Errorf("failed to delete contract: %w", err)
	}
	return nil
}

// MarkContractPaid records a rent installment. When every installment is paid
// the contract moves to completed.
func (c *Controller) MarkContractPaid(ctx context.Context, id string) error {
	contract, ok := c.store.ContractByID(id)
	if !ok {
		return ErrNotFound
	}
	now := c.now()
	upd := ContractUpdate{
		NextPaymentStatus: ptr(models.PaymentPaid),
		LastPaymentDate:   ptr(&now),
	}
	if contract.InstallmentsTotal != nil {
		paid := 0
		if contract.InstallmentsPaid != nil {
			paid = *contract.InstallmentsPaid
		}
		if paid < *contract.InstallmentsTotal {
			paid++
		}
		upd.InstallmentsPaid = &paid
		if paid == *contract.InstallmentsTotal {
			upd.Status = ptr(models.ContractCompleted)
		}
	}
	return c.UpdateContract(ctx, id, upd)
}

// MarkOwnerPaid records the commission payout to the property owner.
func (c *Controller) MarkOwnerPaid(ctx context.Context, id string) error {
	if _, ok := c.store.ContractByID(id); !ok {
		return ErrNotFound
	}
	now := c.now()
	return c.UpdateContract(ctx, id, ContractUpdate{OwnerPaidDate: ptr(&now)})
}

// --- Favorites ---

// ToggleFavorite flips a property in a user's favorites. Unlike the other
// mutations this one is remote-first: the service computes the new set and
// the store takes whatever comes back, for the given user's record and for
// the session user when they match. An empty userID means the session user.
func (c *Controller) ToggleFavorite(ctx context.Context, userID, propertyID string) ([]string, error) {
	if userID == "" {
		user, ok := c.store.CurrentUser()
		if !ok {
			return nil, ErrNotAuthenticated
		}
		userID = user.ID
	}
	favorites, err := c.remote.SetFavorites(ctx, userID, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	c.store.setUserFavorites(userID, favorites)
	return favorites, nil
}

// --- Chat ---

// ConversationIDFor maps a user id to its conversation id. Visitors without
// an id share the anonymous thread.
func (c *Controller) ConversationIDFor(userID string) string {
	if userID == "" {
		return c.anonymousChatID
	}
	return userID
}

// SendMessage appends a chat message to the conversation keyed by the target
// user's id. Conversation metadata comes from the known user record when one
// exists, then from the caller-provided meta, then falls back to the
// anonymous visitor identity. A message from a non-agent sender raises a lead
// notification so the brokerage sees new enquiries immediately.
func (c *Controller) SendMessage(ctx context.Context, targetUserID, text string, sender models.MessageSender, meta models.ConversationMeta) (models.ChatMessage, error) {
	convID := c.ConversationIDFor(targetUserID)
	msg := models.NewChatMessage(text, sender, c.now())

	resolved := meta
	if u, ok := c.store.UserByID(convID); ok {
		resolved = models.ConversationMeta{
			UserName:   u.Name,
			UserAvatar: u.Avatar,
			UserRole:   u.Role,
		}
	} else if resolved.UserName == "" {
		resolved = models.ConversationMeta{
			UserName: "Visitor",
			UserRole: models.RoleClient,
		}
	}

	c.store.appendMessage(convID, msg, resolved)
	if err := c.remote.SaveMessage(ctx, convID, msg, resolved); err != nil {
		c.log.Error().Err(err).Str("conversation_id", convID).Msg("remote message save failed, local copy kept")
		return msg, fmt.Errorf("failed to persist message: %w", err)
	}

	if sender != models.SenderAgent {
		n := models.NewLeadNotification(resolved.UserName, "", c.now())
		c.store.prependNotification(n)
		if err := c.remote.CreateLeadNotification(ctx, n, resolved.UserName); err != nil {
			c.log.Error().Err(err).Str("conversation_id", convID).Msg("lead notification persist failed, local copy kept")
		}
	}
	return msg, nil
}

func (c *Controller) MarkConversationRead(ctx context.Context, convID string) error {
	if !c.store.markConversationRead(convID) {
		return ErrNotFound
	}
	if err := c.remote.MarkConversationRead(ctx, convID); err != nil {
		c.log.Error().Err(err).Str("conversation_id", convID).Msg("remote conversation read-mark failed, local copy kept")
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return nil
}

// --- Notifications ---

func (c *Controller) MarkNotificationRead(ctx context.Context, id string) error {
	if !c.store.markNotificationRead(id) {
		return ErrNotFound
	}
	if err := c.remote.MarkNotificationRead(ctx, id); err != nil {
		c.log.Error().Err(err).Str("notification_id", id).Msg("remote notification read-mark failed, local copy kept")
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (c *Controller) MarkAllNotificationsRead(ctx context.Context) error {
	c.store.markAllNotificationsRead()
	if err := c.remote.MarkAllNotificationsRead(ctx); err != nil {
		c.log.Error().Err(err).Msg("remote notification bulk read-mark failed, local copy kept")
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (c *Controller) ClearNotifications(ctx context.Context) error {
	c.store.clearNotifications()
	if err := c.remote.ClearNotifications(ctx); err != nil {
		c.log.Error().Err(err).Msg("remote notification clear failed, local copy kept")
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}

// --- Snapshot application (subscription bridge) ---

// ApplyProperties replaces the property collection with a remote snapshot.
func (c *Controller) ApplyProperties(props []models.Property) {
	c.store.SetProperties(props)
}

func (c *Controller) ApplyContracts(contracts []models.Contract) {
	c.store.SetContracts(contracts)
}

func (c *Controller) ApplyUsers(users []models.User) {
	c.store.SetUsers(users)
}

func (c *Controller) ApplyConversations(convs []models.Conversation) {
	c.store.SetConversations(convs)
}

// ApplyNotifications sorts the snapshot newest-first before storing it. The
// remote source does not guarantee ordering.
func (c *Controller) ApplyNotifications(notifs []models.Notification) {
	sorted := append([]models.Notification(nil), notifs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	c.store.SetNotifications(sorted)
}
