package property

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Guest represents a hotel guest. Visit statistics are derived from
// checked-out reservations and refreshed after every checkout.
type Guest struct {
	shared.BaseAggregateRoot
	GuestName       string          `gorm:"type:varchar(200);not null;index"`
	Email           string          `gorm:"type:varchar(200)"`
	Phone           string          `gorm:"type:varchar(50);not null"`
	Nationality     string          `gorm:"type:varchar(100)"`
	TotalVisits     int             `gorm:"not null;default:0"`
	LastVisit       *time.Time      `gorm:""`
	LifetimeRevenue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Guest) TableName() string {
	return "guests"
}

// NewGuest creates a new guest; phone is required, email validated if set
func NewGuest(guestName, phone, email string) (*Guest, error) {
	if guestName == "" {
		return nil, shared.NewValidationError("Guest name cannot be empty")
	}
	if phone == "" {
		return nil, shared.NewValidationError("Phone number is required")
	}
	if email != "" && !emailPattern.MatchString(email) {
		return nil, shared.NewValidationError("Invalid email format")
	}
	return &Guest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		GuestName:         guestName,
		Phone:             phone,
		Email:             email,
		LifetimeRevenue:   decimal.Zero,
	}, nil
}

// RefreshStatistics overwrites the derived visit statistics
func (g *Guest) RefreshStatistics(totalVisits int, lastVisit *time.Time, lifetimeRevenue decimal.Decimal) {
	g.TotalVisits = totalVisits
	g.LastVisit = lastVisit
	g.LifetimeRevenue = lifetimeRevenue
	g.UpdatedAt = time.Now()
}
