package users

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserStats is a user with aggregates over their orders.
type UserStats struct {
	User
	OrdersCount int     `json:"ordersCount"`
	TotalSpent  float64 `json:"totalSpent"`
}

// OrderTotal is the part of an order the statistics need.
type OrderTotal struct {
	UserID string
	Total  float64
}
