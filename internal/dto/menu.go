package dto

import "bistro/internal/domain"

type MenuItemDTO struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Cuisine     string `json:"cuisine"`
	Available   bool   `json:"available"`
}

type UpdateAvailabilityRequest struct {
	Available *bool `json:"available"`
}

type AvailabilityDTO struct {
	ID        int  `json:"id"`
	Available bool `json:"available"`
}

type InitializeMenuResponse struct {
	Created int           `json:"created"`
	Items   []MenuItemDTO `json:"items"`
}

func FromMenuItem(item domain.MenuItem) MenuItemDTO {
	return MenuItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Price:       item.Price,
		Description: item.Description,
		Cuisine:     string(item.Cuisine),
		Available:   item.Available,
	}
}

// FromMenuItems never returns nil so empty lists encode as [].
func FromMenuItems(items []domain.MenuItem) []MenuItemDTO {
	out := make([]MenuItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, FromMenuItem(item))
	}
	return out
}
