package schema_registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Registry provides read access to a Confluent Schema Registry.
type Registry interface {
	// GetSchemaByID retrieves a schema by its ID
	GetSchemaByID(ctx context.Context, id int) (*Metadata, error)

	// GetLatestSchema retrieves the latest version of a schema for a subject
	GetLatestSchema(ctx context.Context, subject string) (*Metadata, error)

	// GetSchemaVersion retrieves a specific version of a schema for a subject
	GetSchemaVersion(ctx context.Context, subject string, version int) (*Metadata, error)
}

// Reference names another subject version a schema imports. For Protobuf
// schemas Name is the import path used in the source.
type Reference struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

// Metadata contains metadata about a registered schema
type Metadata struct {
	ID         int         `json:"id"`
	Version    int         `json:"version"`
	Schema     string      `json:"schema"`
	Subject    string      `json:"subject"`
	Type       string      `json:"schemaType,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// Client is the default implementation of Registry
// that communicates with Confluent Schema Registry over HTTP.
type Client struct {
	url        string
	httpClient *http.Client

	// Cache for schemas by ID; a given ID never changes content.
	schemaCache      map[int]*Metadata
	schemaCacheMutex sync.RWMutex

	// Authentication
	username string
	password string
}

// NewClient creates a new schema registry client
// Returns the concrete *Client type.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("schema registry URL is required")
	}

	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Client{
		url: config.URL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		schemaCache: make(map[int]*Metadata),
		username:    config.Username,
		password:    config.Password,
	}, nil
}

// GetSchemaByID retrieves a schema from the registry by its ID
func (c *Client) GetSchemaByID(ctx context.Context, id int) (*Metadata, error) {
	c.schemaCacheMutex.RLock()
	if md, ok := c.schemaCache[id]; ok {
		c.schemaCacheMutex.RUnlock()
		return md, nil
	}
	c.schemaCacheMutex.RUnlock()

	var md Metadata
	if err := c.get(ctx, fmt.Sprintf("/schemas/ids/%d", id), &md); err != nil {
		return nil, err
	}
	md.ID = id

	c.cache(&md)
	return &md, nil
}

// GetLatestSchema retrieves the latest version of a schema for a subject
func (c *Client) GetLatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	return c.getVersion(ctx, subject, "latest")
}

// GetSchemaVersion retrieves one version of a schema for a subject
func (c *Client) GetSchemaVersion(ctx context.Context, subject string, version int) (*Metadata, error) {
	return c.getVersion(ctx, subject, strconv.Itoa(version))
}

func (c *Client) getVersion(ctx context.Context, subject, version string) (*Metadata, error) {
	var md Metadata
	path := fmt.Sprintf("/subjects/%s/versions/%s", url.PathEscape(subject), version)
	if err := c.get(ctx, path, &md); err != nil {
		return nil, err
	}
	md.Subject = subject

	c.cache(&md)
	return &md, nil
}

func (c *Client) cache(md *Metadata) {
	if md.ID == 0 {
		return
	}
	c.schemaCacheMutex.Lock()
	c.schemaCache[md.ID] = md
	c.schemaCacheMutex.Unlock()
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
