package entity

import "time"

type Organization struct {
	Id          string               `json:"id"`
	Name        string               `json:"name"`
	Slug        string               `json:"slug,omitempty"`
	OwnerUserId int64                `json:"ownerUserId"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Members     []OrganizationMember `json:"members,omitempty"`
}

type OrganizationMember struct {
	Id        int64     `json:"id"`
	UserId    ID        `json:"userId"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	JoinedAt  time.Time `json:"joinedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MembersPage struct {
	Content       []OrganizationMember `json:"content"`
	TotalElements int64                `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
	Size          int                  `json:"size"`
	Number        int                  `json:"number"`
}
