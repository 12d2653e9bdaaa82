package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// StatusError is a non-200 reply from the service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// Client calls a running market service.
type Client struct {
	Url  string
	http *http.Client
}

func NewClient(baseUrl string) *Client {
	return &Client{
		Url:  baseUrl,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	u, err := url.JoinPath(c.Url, path)
	if err != nil {
		return err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	dat, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(dat, &e) != nil || e.Error == "" {
			e.Error = string(dat)
		}
		return &StatusError{Code: res.StatusCode, Message: e.Error}
	}
	return json.Unmarshal(dat, out)
}

// Call runs method with params and returns the raw result.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if params == nil {
		params = []any{}
	}
	if err := c.post(ctx, "/rpc", RPCReq{Method: method, Params: params}, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *Client) GetPosts(ctx context.Context, req GetPostsReq) (*GetPostsResponse, error) {
	var resp GetPostsResponse
	if err := c.post(ctx, "/getPosts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
