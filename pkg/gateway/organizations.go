package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
)

type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	OwnerUserId int64  `json:"ownerUserId"`
}

type UpdateOrganizationRequest struct {
	Name *string `json:"name,omitempty"`
	Slug *string `json:"slug,omitempty"`
}

type AddMemberRequest struct {
	UserId int64  `json:"userId"`
	Role   string `json:"role"`
}

type MemberQuery struct {
	Size int
	Page *int
	Sort string
}

func (q MemberQuery) values() url.Values {
	v := url.Values{}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Page != nil {
		v.Set("page", strconv.Itoa(*q.Page))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

func (c *Client) ListOrganizations(ctx context.Context) ([]entity.Organization, error) {
	var out []entity.Organization
	err := c.rest(ctx, "list organizations", http.MethodGet, "/api/organizations", nil, nil, &out)
	return out, err
}

func (c *Client) GetOrganization(ctx context.Context, id string) (*entity.Organization, error) {
	var out entity.Organization
	if err := c.rest(ctx, "get organization", http.MethodGet, pathf("/api/organizations/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*entity.Organization, error) {
	var out entity.Organization
	if err := c.rest(ctx, "create organization", http.MethodPost, "/api/organizations", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrganization(ctx context.Context, id string, req UpdateOrganizationRequest) (*entity.Organization, error) {
	var out entity.Organization
	if err := c.rest(ctx, "update organization", http.MethodPatch, pathf("/api/organizations/%s", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrganization(ctx context.Context, id string) error {
	return c.rest(ctx, "delete organization", http.MethodDelete, pathf("/api/organizations/%s", id), nil, nil, nil)
}

// ListMembers accepts both a bare array and a Spring page from the gateway.
func (c *Client) ListMembers(ctx context.Context, organizationID string, q MemberQuery) ([]entity.OrganizationMember, error) {
	const op = "list members"
	var raw json.RawMessage
	if err := c.rest(ctx, op, http.MethodGet, pathf("/api/organizations/%s/members", organizationID), q.values(), nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var members []entity.OrganizationMember
		if err := json.Unmarshal(raw, &members); err != nil {
			return nil, malformed(op, err)
		}
		return members, nil
	}

	var page entity.MembersPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, malformed(op, err)
	}
	return page.Content, nil
}

// CountMembers counts all members, or only those with status when it is set.
func (c *Client) CountMembers(ctx context.Context, organizationID, status string) (int64, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {status}}
	}
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.rest(ctx, "count members", http.MethodGet, pathf("/api/organizations/%s/members/count", organizationID), query, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) AddMember(ctx context.Context, organizationID string, req AddMemberRequest) (*entity.OrganizationMember, error) {
	var out entity.OrganizationMember
	if err := c.rest(ctx, "add member", http.MethodPost, pathf("/api/organizations/%s/members", organizationID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
