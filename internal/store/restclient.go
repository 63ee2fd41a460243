package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RESTClient talks to the secondary HTTP fallback surface: a peer instance
// mirroring the primary collections under /api/<collection>. It is only
// consulted when the primary datastore is reachable but permission-denied.
type RESTClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// collectionResponse mirrors the data handler's list payload.
type collectionResponse struct {
	Collection string                   `json:"collection"`
	Count      int                      `json:"count"`
	Records    []map[string]interface{} `json:"records"`
}

// writeRequest mirrors the data handler's write payload.
type writeRequest struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

// NewRESTClient creates a fallback client. An empty token means anonymous
// reads only; writes will come back 401 and classify as permission errors.
func NewRESTClient(baseURL, authToken string, timeout time.Duration) *RESTClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RESTClient{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ReadCollection implements Datastore over GET /api/<collection>.
func (c *RESTClient) ReadCollection(ctx context.Context, name string) ([]map[string]interface{}, error) {
	url := fmt.Sprintf("%s/api/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fallback read %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	var payload collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode fallback response for %s: %w", name, err)
	}
	return payload.Records, nil
}

// WriteDocument implements Datastore over POST /api/<collection>.
func (c *RESTClient) WriteDocument(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	url := fmt.Sprintf("%s/api/%s", c.baseURL, collection)
	body, err := json.Marshal(writeRequest{ID: id, Fields: fields})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fallback write %s/%s: %w", collection, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return nil
}

// DeleteDocument implements Datastore over DELETE /api/<collection>/<id>.
func (c *RESTClient) DeleteDocument(ctx context.Context, collection, id string) error {
	url := fmt.Sprintf("%s/api/%s/%s", c.baseURL, collection, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fallback delete %s/%s: %w", collection, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return nil
}

func (c *RESTClient) authorize(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}
