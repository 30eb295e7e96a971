// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package neonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// doJSON sends one request and decodes a JSON response into out.
// in, when non-nil, is marshaled as the request body. There is no retry:
// every call is exactly one upstream request.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	c.setStandardHeaders(req)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.logger != nil {
		c.logger("request", map[string]any{
			"method": method, "url": u, "headers": redactHeaders(req.Header),
		})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if c.logger != nil {
		c.logger("response", map[string]any{
			"method": method, "url": u, "status": resp.StatusCode, "bytes": len(raw),
		})
	}

	if resp.StatusCode/100 != 2 {
		return parseAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// setStandardHeaders applies auth and content negotiation headers.
func (c *Client) setStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// redactHeaders masks the bearer token for logging.
func redactHeaders(h http.Header) http.Header {
	cp := h.Clone()
	if v := cp.Get("Authorization"); v != "" {
		token := strings.TrimPrefix(v, "Bearer ")
		if len(token) > 8 {
			cp.Set("Authorization", "Bearer "+token[:4]+"…"+token[len(token)-4:])
		} else {
			cp.Set("Authorization", "Bearer ********")
		}
	}
	return cp
}

// segment escapes a required path identifier.
func segment(name, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", errors.New("neonapi: " + name + " is required")
	}
	return url.PathEscape(value), nil
}

// branchPath builds /projects/{project_id}/branches/{branch_id}.
func branchPath(projectID, branchID string) (string, error) {
	p, err := segment("project id", projectID)
	if err != nil {
		return "", err
	}
	b, err := segment("branch id", branchID)
	if err != nil {
		return "", err
	}
	return "/projects/" + p + "/branches/" + b, nil
}

// setOptional adds key to q when v is non-nil, even when it points at "".
func setOptional(q url.Values, key string, v *string) {
	if v != nil {
		q.Set(key, *v)
	}
}
