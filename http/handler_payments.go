package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shijia/payment"
)

type postPaymentsConfirmRequest struct {
	OrderID   string `json:"orderId" query:"orderId"`
	SessionID string `json:"sessionId" query:"session_id"`
}

type postPaymentsConfirmResponse struct {
	Status  string `json:"status"`
	Emailed bool   `json:"emailed"`
	Reason  string `json:"reason,omitempty"`
}

// PostPaymentsConfirm is called by the success page after the customer comes
// back from hosted checkout. It may race the webhook for the same order; both
// callers get a consistent answer and only one email goes out.
func (s Server) PostPaymentsConfirm(c echo.Context) error {
	var request postPaymentsConfirmRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	// the success page redirect carries both values in the query string
	if request.OrderID == "" {
		request.OrderID = c.QueryParam("orderId")
	}
	if request.SessionID == "" {
		request.SessionID = c.QueryParam("session_id")
	}

	if request.OrderID == "" {
		return badRequest("missing_order_id")
	}
	if request.SessionID == "" {
		return badRequest("missing_session_id")
	}

	result, err := s.paymentService.Confirm(
		c.Request().Context(),
		request.OrderID,
		request.SessionID,
		payment.SourceClient,
	)
	if err != nil {
		return mapServiceError(err, "order_not_found")
	}

	return c.JSON(http.StatusOK, postPaymentsConfirmResponse{
		Status:  result.Status,
		Emailed: result.Emailed,
		Reason:  result.Reason,
	})
}
