package db

import "time"

// Stage is the user's current position in the conversation state machine.
// Persisted as a plain string so the column stays readable in psql.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageMenuShown     Stage = "menu_shown"
	StagePlanCatalog   Stage = "plan_catalog"
	StagePaymentMethod Stage = "payment_method"
	StageAwaitingProof Stage = "awaiting_proof"
	StageAwaitingEmail Stage = "awaiting_email"
	StagePlanSelect    Stage = "plan_select"
	StageConfirmRedeem Stage = "confirm_redeem"
	// StageAwaitingPhoto is owner-only: the next photo becomes the promo image.
	StageAwaitingPhoto Stage = "awaiting_photo"
)

// Draft carries the transient data a user accumulates mid-workflow.
// Which fields are populated depends on the stage: the purchase path fills
// Plan/Days/Coins/Price and then Method, the redemption path fills Email and
// then the plan fields. Handlers must not read fields their stage did not set.
type Draft struct {
	Email  string `json:"email,omitempty"`
	Plan   string `json:"plan,omitempty"`
	Days   int    `json:"days,omitempty"`
	Coins  int64  `json:"coins,omitempty"`
	Price  int64  `json:"price,omitempty"`
	Method string `json:"method,omitempty"`
}

type User struct {
	TgID        int64 `gorm:"primaryKey;autoIncrement:false"`
	FirstName   string
	Username    string
	Stage       Stage `gorm:"type:varchar(32);default:idle"`
	Draft       Draft `gorm:"serializer:json"`
	CoinBalance int64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

// Order statuses. An order leaves "pending" exactly once.
const (
	OrderPending  = "pending"
	OrderAccepted = "accepted"
	OrderDeclined = "declined"
)

// Order is a coin purchase awaiting payment-proof review.
type Order struct {
	ID             uint   `gorm:"primaryKey"`
	Reference      string `gorm:"uniqueIndex"`
	UserID         int64  `gorm:"index"`
	PlanName       string
	Days           int
	Coins          int64
	Price          int64
	Status         string `gorm:"type:varchar(16);default:pending"`
	ProofMessageID int
	CreatedAt      time.Time
}

// License statuses. pending->active|declined is owned by the admin approval
// protocol, active->expired exclusively by the expiration sweep.
const (
	LicensePending  = "pending"
	LicenseActive   = "active"
	LicenseDeclined = "declined"
	LicenseExpired  = "expired"
)

// License is a time-boxed entitlement redeemed with coins.
// ExpiresAt is set once at creation and never changes.
type License struct {
	ID         uint   `gorm:"primaryKey"`
	Reference  string `gorm:"uniqueIndex"`
	UserID     int64  `gorm:"index"`
	Email      string
	PlanName   string
	CoinsSpent int64
	Days       int
	Status     string `gorm:"type:varchar(16);default:pending"`
	ExpiresAt  time.Time
	Reminded   bool `gorm:"default:false"`
	CreatedAt  time.Time
}

// Setting is a flat key->string map for routing identifiers and the promo image.
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}
