package state

import (
	"sync"

	"github.com/inaciosamuel465/estateflow/internal/models"
)

// Store holds the canonical in-memory copies of the domain collections. All
// mutation goes through the Controller; view-layer code only ever reads.
// Collections are kept newest-first where insertion order matters
// (properties, contracts) and timestamp-descending for notifications.
type Store struct {
	mu            sync.RWMutex
	properties    []models.Property
	contracts     []models.Contract
	users         []models.User
	conversations []models.Conversation
	notifications []models.Notification
	currentUser   *models.User
}

func NewStore() *Store {
	return &Store{}
}

// --- Initial load / snapshot replacement ---

func (s *Store) SetProperties(props []models.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties = append([]models.Property(nil), props...)
}

func (s *Store) SetContracts(contracts []models.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts = append([]models.Contract(nil), contracts...)
}

func (s *Store) SetUsers(users []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append([]models.User(nil), users...)
}

func (s *Store) SetConversations(convs []models.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = append([]models.Conversation(nil), convs...)
}

func (s *Store) SetNotifications(notifs []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]models.Notification(nil), notifs...)
}

func (s *Store) SetCurrentUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.currentUser = nil
		return
	}
	copied := *u
	s.currentUser = &copied
}

// --- Read access ---

func (s *Store) Properties() []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Property(nil), s.properties...)
}

func (s *Store) PropertyByID(id string) (models.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.properties {
		if p.ID == id {
			return p, true
		}
	}
	return models.Property{}, false
}

// FilterProperties returns the properties matching a public browse filter,
// preserving store order.
func (s *Store) FilterProperties(f models.PropertyFilter) []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Property
	for _, p := range s.properties {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Location != "" && !containsFold(p.Location, f.Location) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Store) Contracts() []models.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Contract(nil), s.contracts...)
}

func (s *Store) ContractByID(id string) (models.Contract, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contracts {
		if c.ID == id {
			return c, true
		}
	}
	return models.Contract{}, false
}

// ContractsForProperty returns all contracts referencing a property.
func (s *Store) ContractsForProperty(propertyID string) []models.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Contract
	for _, c := range s.contracts {
		if c.PropertyID == propertyID {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.users...)
}

func (s *Store) UserByID(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return models.User{}, false
	}
	return *s.currentUser, true
}

func (s *Store) Conversations() []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Conversation(nil), s.conversations...)
}

func (s *Store) ConversationByID(id string) (models.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.conversations {
		if c.ID == id {
			return c, true
		}
	}
	return models.Conversation{}, false
}

func (s *Store) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification(nil), s.notifications...)
}

func (s *Store) UnreadNotificationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// FinancialSummary is the derived aggregate feeding the dashboard and the
// Excel export.
type FinancialSummary struct {
	ActiveContracts     int     `json:"active_contracts"`
	TotalContractValue  float64 `json:"total_contract_value"`
	CommissionRevenue   float64 `json:"commission_revenue"`
	PendingOwnerPayouts int     `json:"pending_owner_payouts"`
}

func (s *Store) Financials() FinancialSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum FinancialSummary
	for _, c := range s.contracts {
		if c.Status == models.ContractActive {
			sum.ActiveContracts++
		}
		sum.TotalContractValue += c.Value
		sum.CommissionRevenue += c.Commission()
		if c.OwnerPaidDate == nil {
			sum.PendingOwnerPayouts++
		}
	}
	return sum
}

// --- Mutation (Controller only) ---

func (s *Store) prependProperty(p models.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties = append([]models.Property{p}, s.properties...)
}

func (s *Store) updateProperty(id string, upd PropertyUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.properties {
		if s.properties[i].ID == id {
			upd.apply(&s.properties[i])
			return true
		}
	}
	return false
}

func (s *Store) removeProperty(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.properties {
		if s.properties[i].ID == id {
			s.properties = append(s.properties[:i], s.properties[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) prependContract(c models.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts = append([]models.Contract{c}, s.contracts...)
}

func (s *Store) updateContract(id string, upd ContractUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contracts {
		if s.contracts[i].ID == id {
			upd.apply(&s.contracts[i])
			return true
		}
	}
	return false
}

func (s *Store) removeContract(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contracts {
		if s.contracts[i].ID == id {
			s.contracts = append(s.contracts[:i], s.contracts[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) setUserFavorites(userID string, favorites []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].Favorites = append([]string(nil), favorites...)
		}
	}
	if s.currentUser != nil && s.currentUser.ID == userID {
		s.currentUser.Favorites = append([]string(nil), favorites...)
	}
}

// appendMessage upserts the conversation for convID: appends the message,
// refreshes the denormalized metadata and last-message fields, and bumps the
// unread counter for user-sent messages. New conversations are prepended.
func (s *Store) appendMessage(convID string, msg models.ChatMessage, meta models.ConversationMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == convID {
			c := &s.conversations[i]
			c.Messages = append(c.Messages, msg)
			c.ConversationMeta = meta
			c.LastMessage = msg.Text
			c.LastMessageTime = msg.SentAt
			c.UpdatedAt = msg.SentAt
			if msg.Sender == models.SenderUser {
				c.UnreadCount++
			}
			return
		}
	}
	conv := models.Conversation{
		ID:               convID,
		ConversationMeta: meta,
		Messages:         []models.ChatMessage{msg},
		LastMessage:      msg.Text,
		LastMessageTime:  msg.SentAt,
		UpdatedAt:        msg.SentAt,
	}
	if msg.Sender == models.SenderUser {
		conv.UnreadCount = 1
	}
	s.conversations = append([]models.Conversation{conv}, s.conversations...)
}

func (s *Store) markConversationRead(convID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == convID {
			c := &s.conversations[i]
			c.UnreadCount = 0
			for j := range c.Messages {
				c.Messages[j].Read = true
			}
			return true
		}
	}
	return false
}

func (s *Store) prependNotification(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]models.Notification{n}, s.notifications...)
}

func (s *Store) markNotificationRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return true
		}
	}
	return false
}

func (s *Store) markAllNotificationsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
}

func (s *Store) clearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}
