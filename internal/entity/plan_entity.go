package entity

import "time"

type Plan struct {
	Id              string     `json:"id"`
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	BillingInterval string     `json:"billingInterval"`
	PriceCents      int64      `json:"priceCents"`
	Currency        string     `json:"currency"`
	LimitMembers    *int       `json:"limitMembers,omitempty"`
	LimitChecks     *int       `json:"limitChecks,omitempty"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}
