package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusApproved    PaymentStatus = "approved"
	PaymentStatusAuthorized  PaymentStatus = "authorized"
	PaymentStatusInProcess   PaymentStatus = "in_process"
	PaymentStatusInMediation PaymentStatus = "in_mediation"
	PaymentStatusRejected    PaymentStatus = "rejected"
	PaymentStatusCancelled   PaymentStatus = "cancelled"
	PaymentStatusRefunded    PaymentStatus = "refunded"
	PaymentStatusChargedBack PaymentStatus = "charged_back"
)

// OrderStatus maps a provider payment status onto the order lifecycle. The
// second result is false when the payment status does not move the order.
// A rejected payment leaves the order open so the buyer can pay again.
func (s PaymentStatus) OrderStatus() (OrderStatus, bool) {
	switch s {
	case PaymentStatusApproved:
		return OrderStatusPaid, true
	case PaymentStatusCancelled:
		return OrderStatusCancelled, true
	case PaymentStatusRefunded, PaymentStatusChargedBack:
		return OrderStatusRefunded, true
	default:
		return "", false
	}
}

// Payment is the local copy of a provider payment, keyed by the provider id.
type Payment struct {
	ProviderID   string        `db:"provider_id"`
	OrderID      string        `db:"order_id"`
	Status       PaymentStatus `db:"status"`
	StatusDetail string        `db:"status_detail"`
	AmountCents  int64         `db:"amount_cents"`
	Currency     string        `db:"currency"`
	ApprovedAt   *time.Time    `db:"approved_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// ProviderCredentials are the OAuth tokens issued for a seller account.
type ProviderCredentials struct {
	ProviderUserID string    `db:"provider_user_id"`
	AccessToken    string    `db:"access_token"`
	RefreshToken   string    `db:"refresh_token"`
	PublicKey      string    `db:"public_key"`
	Scope          string    `db:"scope"`
	LiveMode       bool      `db:"live_mode"`
	ExpiresAt      time.Time `db:"expires_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type NotificationTopic string

const (
	TopicPayment       NotificationTopic = "payment"
	TopicMerchantOrder NotificationTopic = "merchant_order"
)

type Notification struct {
	DeliveryID string
	Topic      NotificationTopic
	Action     string
	ResourceID string
}

// ProviderCallback is everything the provider may send to the callback URLs:
// either an OAuth authorization result or a notification.
type ProviderCallback struct {
	Code         string
	State        string
	Notification *Notification
}

// Key identifies a delivery. Providers that omit a delivery id are keyed by
// what the notification points at.
func (n Notification) Key() string {
	if n.DeliveryID != "" {
		return n.DeliveryID
	}
	return string(n.Topic) + ":" + n.Action + ":" + n.ResourceID
}
