package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// graphql posts a query and decodes its `data` member into out.
func (c *Client) graphql(ctx context.Context, op, query string, vars map[string]interface{}, out interface{}) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.graphqlPath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	raw, err := c.send(ctx, op, req)
	if err != nil {
		return err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return malformed(op, err)
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{Op: op}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return gqlErr
	}
	if len(resp.Data) == 0 || bytes.Equal(resp.Data, []byte("null")) {
		return malformed(op, nil)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return malformed(op, err)
	}
	return nil
}
