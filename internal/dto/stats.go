package dto

import "time"

type StatsDTO struct {
	TotalMenuItems int64 `json:"totalMenuItems"`
	TotalOrders    int64 `json:"totalOrders"`
	TotalRevenue   int64 `json:"totalRevenue"`
}

type RevenueDTO struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Revenue int64     `json:"revenue"`
}
