package order

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"shijia/entity"
)

const (
	// Applied when a booking-only order carries no menu items.
	fallbackAmountCents = 1000

	defaultCurrency = "usd"
)

type BookingsRepository interface {
	GetByID(ctx context.Context, bookingID string) (entity.Booking, error)
}

type MenuRepository interface {
	ByIDs(ctx context.Context, ids []string) (map[string]entity.MenuItem, error)
}

type OrdersRepository interface {
	CreatePending(ctx context.Context, order entity.Order, items []entity.OrderItem) (entity.Order, bool, error)
}

type Service struct {
	bookings BookingsRepository
	menu     MenuRepository
	orders   OrdersRepository
}

func NewService(
	bookings BookingsRepository,
	menu MenuRepository,
	orders OrdersRepository,
) Service {
	if bookings == nil {
		panic("missing bookings repo")
	}
	if menu == nil {
		panic("missing menu repo")
	}
	if orders == nil {
		panic("missing orders repo")
	}

	return Service{
		bookings: bookings,
		menu:     menu,
		orders:   orders,
	}
}

type ItemInput struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"qty"`
}

type CreateRequest struct {
	BookingID string      `json:"bookingId"`
	Items     []ItemInput `json:"items"`

	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	VisitDate string `json:"visitDate"`
	VisitTime string `json:"visitTime"`
	PartySize int    `json:"partySize"`
}

type CreateResult struct {
	Order  entity.Order
	Items  []entity.OrderItem
	Reused bool
}

// Create prices the request against the current menu and persists a pending
// order. An existing pending order for the same booking is returned instead of
// creating a second one.
func (s Service) Create(ctx context.Context, request CreateRequest) (CreateResult, error) {
	if request.BookingID == "" {
		return CreateResult{}, entity.ValidationError{Code: "missing_booking_id"}
	}

	booking, err := s.bookings.GetByID(ctx, request.BookingID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return CreateResult{}, entity.ValidationError{Code: "booking_not_found"}
		}
		return CreateResult{}, err
	}

	contact, err := resolveContact(request, booking)
	if err != nil {
		return CreateResult{}, err
	}

	orderID := uuid.NewString()

	items, amountCents, err := s.priceItems(ctx, orderID, request.Items)
	if err != nil {
		return CreateResult{}, err
	}
	if len(items) == 0 {
		amountCents = fallbackAmountCents
	}
	if amountCents <= 0 {
		return CreateResult{}, entity.ValidationError{Code: "invalid_amount_cents"}
	}

	order := entity.Order{
		OrderID:     orderID,
		OrderType:   entity.OrderTypeBooking,
		Status:      entity.OrderStatusPending,
		AmountCents: amountCents,
		Currency:    defaultCurrency,
		BookingID:   booking.BookingID,
		Name:        contact.name,
		Phone:       contact.phone,
		Email:       contact.email,
		VisitDate:   contact.visitDate,
		VisitTime:   contact.visitTime,
		PartySize:   contact.partySize,
	}

	created, reused, err := s.orders.CreatePending(ctx, order, items)
	if err != nil {
		return CreateResult{}, err
	}
	if reused {
		items = nil
	}

	return CreateResult{
		Order:  created,
		Items:  items,
		Reused: reused,
	}, nil
}

type contactDetails struct {
	name      string
	phone     string
	email     string
	visitDate string
	visitTime string
	partySize int
}

// resolveContact fills missing request fields from the booking, then validates
// the merged result.
func resolveContact(request CreateRequest, booking entity.Booking) (contactDetails, error) {
	contact := contactDetails{
		name:      request.Name,
		phone:     request.Phone,
		email:     request.Email,
		visitDate: request.VisitDate,
		visitTime: request.VisitTime,
		partySize: request.PartySize,
	}

	if contact.name == "" {
		contact.name = booking.Name
	}
	if contact.phone == "" {
		contact.phone = booking.Phone
	}
	if contact.email == "" {
		contact.email = booking.Email
	}
	if contact.visitDate == "" {
		contact.visitDate = booking.VisitDate
	}
	if contact.visitTime == "" {
		contact.visitTime = booking.VisitTime
	}
	if contact.partySize == 0 {
		contact.partySize = booking.PartySize
	}

	if contact.name == "" {
		return contactDetails{}, entity.ValidationError{Code: "missing_name"}
	}
	if contact.phone == "" {
		return contactDetails{}, entity.ValidationError{Code: "missing_phone"}
	}
	if contact.email == "" {
		return contactDetails{}, entity.ValidationError{Code: "missing_email"}
	}

	var err error
	contact.visitDate, err = entity.NormalizeVisitDate(contact.visitDate)
	if err != nil {
		return contactDetails{}, err
	}
	contact.visitTime, err = entity.NormalizeVisitTime(contact.visitTime)
	if err != nil {
		return contactDetails{}, err
	}

	if contact.partySize < 1 || contact.partySize > 50 {
		return contactDetails{}, entity.ValidationError{Code: "invalid_party_size"}
	}

	return contact, nil
}

// priceItems prices every line against the menu. Client-sent prices are never
// trusted.
func (s Service) priceItems(ctx context.Context, orderID string, inputs []ItemInput) ([]entity.OrderItem, int64, error) {
	if len(inputs) == 0 {
		return nil, 0, nil
	}

	ids := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if input.MenuItemID == "" {
			return nil, 0, entity.ValidationError{Code: "invalid_menu_item_id"}
		}
		if input.Quantity < 1 {
			return nil, 0, entity.ValidationError{Code: "invalid_quantity", Detail: input.MenuItemID}
		}
		ids = append(ids, input.MenuItemID)
	}

	menuItems, err := s.menu.ByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	var items []entity.OrderItem
	var total int64
	for _, input := range inputs {
		// no catalog row means the menu has no price for this item
		menuItem, ok := menuItems[input.MenuItemID]
		if !ok {
			return nil, 0, entity.ValidationError{Code: "menu_price_missing", Detail: input.MenuItemID}
		}
		if menuItem.PriceCents <= 0 {
			return nil, 0, entity.ValidationError{Code: "menu_price_missing", Detail: input.MenuItemID}
		}
		if menuItem.Name == "" {
			return nil, 0, entity.ValidationError{Code: "menu_name_missing", Detail: input.MenuItemID}
		}

		items = append(items, entity.OrderItem{
			OrderID:        orderID,
			MenuItemID:     menuItem.ID,
			ItemName:       menuItem.Name,
			UnitPriceCents: menuItem.PriceCents,
			Quantity:       input.Quantity,
		})
		total += menuItem.PriceCents * int64(input.Quantity)
	}

	return items, total, nil
}
