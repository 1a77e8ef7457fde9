package property

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/shared"
)

// PropertyService manages properties, owners and guests
type PropertyService struct {
	propertyRepo          property.PropertyRepository
	ownerRepo             property.OwnerRepository
	guestRepo             property.GuestRepository
	defaultCommissionRate decimal.Decimal
}

// NewPropertyService creates a new PropertyService. defaultCommissionRate
// applies to owners created without an explicit rate.
func NewPropertyService(
	propertyRepo property.PropertyRepository,
	ownerRepo property.OwnerRepository,
	guestRepo property.GuestRepository,
	defaultCommissionRate decimal.Decimal,
) *PropertyService {
	return &PropertyService{
		propertyRepo:          propertyRepo,
		ownerRepo:             ownerRepo,
		guestRepo:             guestRepo,
		defaultCommissionRate: defaultCommissionRate,
	}
}

// CreatePropertyRequest carries the fields for a new property
type CreatePropertyRequest struct {
	Name         string                `json:"name" binding:"required"`
	PropertyType property.PropertyType `json:"property_type" binding:"required"`
	Address      string                `json:"address"`
	City         string                `json:"city"`
}

// CreateProperty registers a property; the name must be unique
func (s *PropertyService) CreateProperty(ctx context.Context, req CreatePropertyRequest) (*property.Property, error) {
	existing, err := s.propertyRepo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewConflictError("A property named " + req.Name + " already exists")
	}
	p, err := property.NewProperty(req.Name, req.PropertyType)
	if err != nil {
		return nil, err
	}
	p.Address = req.Address
	p.City = req.City
	if err := s.propertyRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProperties returns properties matching the filter
func (s *PropertyService) ListProperties(ctx context.Context, filter shared.Filter) ([]property.Property, error) {
	return s.propertyRepo.FindAll(ctx, filter)
}

// CreateOwnerRequest carries the fields for a new owner
type CreateOwnerRequest struct {
	OwnerName           string `json:"owner_name" binding:"required"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	CommissionRate      string `json:"commission_rate"`
	SupplierAccountCode string `json:"supplier_account_code"`
}

// CreateOwner registers a unit owner with their commission rate. An
// omitted rate falls back to the configured default.
func (s *PropertyService) CreateOwner(ctx context.Context, req CreateOwnerRequest) (*property.Owner, error) {
	rate := s.defaultCommissionRate
	if req.CommissionRate != "" {
		var err error
		rate, err = decimal.NewFromString(req.CommissionRate)
		if err != nil {
			return nil, shared.NewValidationError("Invalid commission rate: " + req.CommissionRate)
		}
	}
	owner, err := property.NewOwner(req.OwnerName, rate)
	if err != nil {
		return nil, err
	}
	owner.Email = req.Email
	owner.Phone = req.Phone
	if req.SupplierAccountCode != "" {
		if err := owner.LinkSupplierAccount(req.SupplierAccountCode); err != nil {
			return nil, err
		}
	}
	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		return nil, err
	}
	return owner, nil
}

// GetOwner returns one owner
func (s *PropertyService) GetOwner(ctx context.Context, id uuid.UUID) (*property.Owner, error) {
	owner, err := s.ownerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, shared.NewNotFoundError("Owner not found")
	}
	return owner, nil
}

// ListOwners returns owners matching the filter
func (s *PropertyService) ListOwners(ctx context.Context, filter shared.Filter) ([]property.Owner, error) {
	return s.ownerRepo.FindAll(ctx, filter)
}

// CreateGuestRequest carries the fields for a new guest
type CreateGuestRequest struct {
	GuestName   string `json:"guest_name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email"`
	Nationality string `json:"nationality"`
}

// CreateGuest registers a guest profile
func (s *PropertyService) CreateGuest(ctx context.Context, req CreateGuestRequest) (*property.Guest, error) {
	guest, err := property.NewGuest(req.GuestName, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	guest.Nationality = req.Nationality
	if err := s.guestRepo.Save(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

// GetGuest returns one guest with their visit statistics
func (s *PropertyService) GetGuest(ctx context.Context, id uuid.UUID) (*property.Guest, error) {
	guest, err := s.guestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if guest == nil {
		return nil, shared.NewNotFoundError("Guest not found")
	}
	return guest, nil
}

// ListGuests returns guests matching the filter
func (s *PropertyService) ListGuests(ctx context.Context, filter shared.Filter) ([]property.Guest, error) {
	return s.guestRepo.FindAll(ctx, filter)
}
