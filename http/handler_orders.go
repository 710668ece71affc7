package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"shijia/entity"
	"shijia/order"
)

type orderItemResponse struct {
	MenuItemID     string `json:"menuItemId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"qty"`
}

type orderResponse struct {
	OrderID           string              `json:"orderId"`
	Status            string              `json:"status"`
	AmountCents       int64               `json:"amountCents"`
	Currency          string              `json:"currency"`
	BookingID         string              `json:"bookingId,omitempty"`
	VisitDate         string              `json:"visitDate"`
	VisitTime         string              `json:"visitTime"`
	PartySize         int                 `json:"partySize"`
	CheckoutSessionID string              `json:"checkoutSessionId,omitempty"`
	PaidAt            *time.Time          `json:"paidAt,omitempty"`
	Items             []orderItemResponse `json:"items,omitempty"`
}

type postOrdersResponse struct {
	orderResponse
	Reused bool `json:"reused"`
}

func (s Server) PostOrders(c echo.Context) error {
	var request order.CreateRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	result, err := s.orderService.Create(c.Request().Context(), request)
	if err != nil {
		return mapServiceError(err, "booking_not_found")
	}

	return c.JSON(http.StatusCreated, postOrdersResponse{
		orderResponse: toOrderResponse(result.Order, result.Items),
		Reused:        result.Reused,
	})
}

// GetOrder exposes the customer-safe subset of an order; contact details stay
// server side.
func (s Server) GetOrder(c echo.Context) error {
	orderID := c.Param("id")

	o, err := s.ordersRepo.GetByID(c.Request().Context(), orderID)
	if err != nil {
		return mapServiceError(err, "order_not_found")
	}

	items, err := s.ordersRepo.FindItems(c.Request().Context(), orderID)
	if err != nil {
		return fmt.Errorf("could not load order items: %w", err)
	}

	return c.JSON(http.StatusOK, toOrderResponse(o, items))
}

func toOrderResponse(o entity.Order, items []entity.OrderItem) orderResponse {
	response := orderResponse{
		OrderID:           o.OrderID,
		Status:            o.Status,
		AmountCents:       o.AmountCents,
		Currency:          o.Currency,
		BookingID:         o.BookingID,
		VisitDate:         o.VisitDate,
		VisitTime:         o.VisitTime,
		PartySize:         o.PartySize,
		CheckoutSessionID: o.CheckoutSessionID,
	}
	if o.PaidAt.Valid {
		paidAt := o.PaidAt.Time
		response.PaidAt = &paidAt
	}
	for _, item := range items {
		response.Items = append(response.Items, orderItemResponse{
			MenuItemID:     item.MenuItemID,
			Name:           item.ItemName,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		})
	}
	return response
}
