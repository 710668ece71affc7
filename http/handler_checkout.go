package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type postCheckoutRequest struct {
	OrderID string `json:"orderId"`
}

type postCheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

func (s Server) PostCheckout(c echo.Context) error {
	var request postCheckoutRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.OrderID == "" {
		return badRequest("missing_order_id")
	}

	result, err := s.checkoutService.Start(c.Request().Context(), request.OrderID)
	if err != nil {
		return mapServiceError(err, "order_not_found")
	}

	return c.JSON(http.StatusOK, postCheckoutResponse{
		URL:       result.URL,
		SessionID: result.SessionID,
	})
}
