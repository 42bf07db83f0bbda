// FILE: internal/entity/subscription_entity.go
package entity

import "time"

type Subscription struct {
	Id             string     `json:"id"`
	OrganizationId string     `json:"organizationId"`
	PlanId         string     `json:"planId"`
	Status         string     `json:"status"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	RenewsAt       time.Time  `json:"renewsAt"`
	SeatCount      int        `json:"seatCount"`
	ModelUsesCount int        `json:"modelUsesCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
