// Package storage uploads vehicle photos to the hosted object store.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotConfigured is returned when no storage credentials were provided.
	ErrNotConfigured = errors.New("storage: credentials not configured")
	// ErrInvalidFormat rejects photos that are not JPG, PNG or WEBP.
	ErrInvalidFormat = errors.New("Formato de imagem inválido. Use JPG, PNG ou WEBP.")
)

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// AllowedExtension reports whether ext is an accepted photo format.
func AllowedExtension(ext string) bool {
	return allowedExtensions[strings.ToLower(ext)]
}

// Client talks to the storage REST API of the hosted backend.
type Client struct {
	baseURL string
	key     string
	bucket  string
	http    *http.Client
}

// New returns a client for bucket. An empty baseURL or key yields a client
// whose calls fail with ErrNotConfigured.
func New(baseURL, key, bucket string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		bucket:  bucket,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) configured() bool {
	return c != nil && c.baseURL != "" && c.key != ""
}

// Photo is an uploaded file.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Extension returns the lower-cased extension of the photo, "jpg" when the
// filename has none.
func (p Photo) Extension() string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p.Filename)), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}

// ReplaceVehiclePhoto removes previous photos of a vehicle, uploads p and
// returns its public URL. Empty photos are ignored and yield "".
func (c *Client) ReplaceVehiclePhoto(ctx context.Context, vehicleID string, p Photo) (string, error) {
	if vehicleID == "" || len(p.Data) == 0 {
		return "", nil
	}
	ext := p.Extension()
	if !AllowedExtension(ext) {
		return "", ErrInvalidFormat
	}
	if !c.configured() {
		return "", ErrNotConfigured
	}

	_ = c.DeletePrefix(ctx, vehicleID)

	objectPath := fmt.Sprintf("%s/foto_%s.%s", vehicleID, strings.ReplaceAll(uuid.NewString(), "-", "")[:8], ext)
	contentType := p.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(objectPath), bytes.NewReader(p.Data))
	if err != nil {
		return "", err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	if err := c.do(req, nil); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return c.PublicURL(objectPath), nil
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type listEntry struct {
	Name string `json:"name"`
}

// List returns the object paths stored under a vehicle's folder.
func (c *Client) List(ctx context.Context, vehicleID string) ([]string, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(listRequest{Prefix: vehicleID, Limit: 100})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/storage/v1/object/list/"+c.bucket, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	var entries []listEntry
	if err := c.do(req, &entries); err != nil {
		return nil, fmt.Errorf("list %s: %w", vehicleID, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		paths = append(paths, vehicleID+"/"+e.Name)
	}
	return paths, nil
}

// DeletePrefix removes every photo of a vehicle.
func (c *Client) DeletePrefix(ctx context.Context, vehicleID string) error {
	paths, err := c.List(ctx, vehicleID)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/storage/v1/object/"+c.bucket, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("remove %s: %w", vehicleID, err)
	}
	return nil
}

// PublicURL is the unauthenticated URL of an object.
func (c *Client) PublicURL(objectPath string) string {
	return c.baseURL + "/storage/v1/object/public/" + c.bucket + "/" + objectPath
}

func (c *Client) objectURL(objectPath string) string {
	return c.baseURL + "/storage/v1/object/" + c.bucket + "/" + objectPath
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("apikey", c.key)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
