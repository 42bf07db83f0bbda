// FILE: internal/dto/admin_dto.go
package dto

type SelectOrganizationRequest struct {
	OrganizationId string `json:"organizationId" validate:"required"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Slug string `json:"slug" validate:"omitempty,max=64"`
	// Defaults to the signed-in user.
	OwnerUserId int64 `json:"ownerUserId" validate:"omitempty,gt=0"`
}

type UpdateOrganizationRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2"`
	Slug *string `json:"slug" validate:"omitempty,max=64"`
}

type AddMemberRequest struct {
	UserId int64  `json:"userId" validate:"required,gt=0"`
	Role   string `json:"role" validate:"required"`
}

type MemberListQuery struct {
	Size int    `query:"size" validate:"omitempty,min=1,max=200"`
	Page *int   `query:"page" validate:"omitempty,min=0"`
	Sort string `query:"sort"`
}

type MemberCountResponse struct {
	Count int64 `json:"count"`
}

type PlanRequest struct {
	Code            string `json:"code" validate:"omitempty,max=32"`
	Name            string `json:"name" validate:"omitempty,min=2"`
	Description     string `json:"description"`
	BillingInterval string `json:"billingInterval" validate:"omitempty,oneof=MONTHLY YEARLY"`
	PriceCents      *int64 `json:"priceCents" validate:"omitempty,min=0"`
	Currency        string `json:"currency" validate:"omitempty,len=3"`
	LimitMembers    *int   `json:"limitMembers" validate:"omitempty,min=0"`
	LimitChecks     *int   `json:"limitChecks" validate:"omitempty,min=0"`
	Active          *bool  `json:"active"`
}

type CreatePlanRequest struct {
	Code            string `json:"code" validate:"required,max=32"`
	Name            string `json:"name" validate:"required,min=2"`
	Description     string `json:"description"`
	BillingInterval string `json:"billingInterval" validate:"required,oneof=MONTHLY YEARLY"`
	PriceCents      *int64 `json:"priceCents" validate:"required,min=0"`
	Currency        string `json:"currency" validate:"required,len=3"`
	LimitMembers    *int   `json:"limitMembers" validate:"omitempty,min=0"`
	LimitChecks     *int   `json:"limitChecks" validate:"omitempty,min=0"`
	Active          *bool  `json:"active"`
}

type PlanActiveRequest struct {
	Value *bool `json:"value" validate:"required"`
}

type CreateSubscriptionRequest struct {
	PlanId    string `json:"planId" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	RenewsAt  string `json:"renewsAt" validate:"required,datetime=2006-01-02"`
	SeatCount int    `json:"seatCount" validate:"required,min=1"`
}

type ProjectHistoryQuery struct {
	StartDate string `query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"required,datetime=2006-01-02"`
}

type RiskTrendQuery struct {
	Period string `query:"period" validate:"omitempty,oneof=monthly weekly"`
}
