package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"shijia/entity"
)

func (s Server) GetMenu(c echo.Context) error {
	items, err := s.menuRepo.FindAvailable(c.Request().Context())
	if err != nil {
		return fmt.Errorf("could not list menu: %w", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items": items,
	})
}

type postMenuItemRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"priceCents"`
	IsAvailable bool   `json:"isAvailable"`
	Sort        int    `json:"sort"`
	ImageURL    string `json:"imageUrl"`
}

func (s Server) PostAdminMenuItem(c echo.Context) error {
	var request postMenuItemRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.Name == "" {
		return badRequest("menu_name_missing")
	}
	if request.PriceCents <= 0 {
		return badRequest("menu_price_missing")
	}
	if request.ID == "" {
		request.ID = uuid.NewString()
	}

	item := entity.MenuItem{
		ID:          request.ID,
		Name:        request.Name,
		Description: request.Description,
		Category:    request.Category,
		PriceCents:  request.PriceCents,
		IsAvailable: request.IsAvailable,
		Sort:        request.Sort,
		ImageURL:    request.ImageURL,
	}

	if err := s.menuRepo.Upsert(c.Request().Context(), item); err != nil {
		return fmt.Errorf("could not upsert menu item: %w", err)
	}

	return c.JSON(http.StatusOK, item)
}
