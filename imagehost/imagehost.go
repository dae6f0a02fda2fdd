// Package imagehost uploads raw image bytes to an imgbb-style hosting API
// and returns the public URL. The engine stores only the URL, never bytes.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.imgbb.com/1/upload"

// Client talks to the image hosting collaborator.
type Client struct {
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		APIKey:   apiKey,
		Endpoint: defaultEndpoint,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether uploads are configured.
func (c *Client) Enabled() bool {
	return c != nil && c.APIKey != ""
}

// Upload posts image bytes and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, image io.Reader) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", err
	}
	if err := form.WriteField("key", c.APIKey); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("image upload failed: %s: %s", resp.Status, msg)
	}

	var payload struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("image upload response: %w", err)
	}
	if payload.Data.URL == "" {
		return "", fmt.Errorf("image upload response missing url")
	}
	return payload.Data.URL, nil
}
