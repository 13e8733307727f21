package state

import (
	"context"
	"strings"

	"github.com/inaciosamuel465/estateflow/internal/models"
)

// Thresholds, in whole days remaining, at which an expiring contract raises a
// notification. The match is exact: a scan that runs when 29 days remain
// raises nothing, and the 15-day scan catches it next.
var expiryThresholds = [...]int{30, 15, 7}

// ScanExpiringContracts walks the active contracts with an end date and
// raises a contract notification for each one whose remaining days hit a
// threshold. A contract already flagged with an unexpired notice is skipped;
// dedup keys on the notification text carrying the property title together
// with the expiring-soon wording, so the text built in models must stay in
// sync with this check.
func (c *Controller) ScanExpiringContracts(ctx context.Context) []models.Notification {
	now := c.now()
	existing := c.store.Notifications()

	var raised []models.Notification
	for _, contract := range c.store.Contracts() {
		if contract.Status != models.ContractActive {
			continue
		}
		days, ok := contract.DaysUntilEnd(now)
		if !ok {
			continue
		}
		if !atThreshold(days) {
			continue
		}
		if hasExpiryNotice(existing, contract) {
			continue
		}
		n := models.NewContractNotification(contract.ID, contract.PropertyTitle, models.ExpiryReason(days), now)
		c.store.prependNotification(n)
		existing = append(existing, n)
		raised = append(raised, n)
		if err := c.remote.CreateNotification(ctx, n); err != nil {
			c.log.Error().Err(err).Str("contract_id", contract.ID).Msg("expiry notification persist failed, local copy kept")
		}
	}
	return raised
}

func atThreshold(days int) bool {
	for _, t := range expiryThresholds {
		if days == t {
			return true
		}
	}
	return false
}

func hasExpiryNotice(notifications []models.Notification, contract models.Contract) bool {
	for _, n := range notifications {
		if n.Type != models.NotificationContract {
			continue
		}
		if strings.Contains(n.Message, contract.PropertyTitle) && strings.Contains(n.Message, models.ExpiringMarker) {
			return true
		}
	}
	return false
}
