package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MaxPerPage is the largest page the CRM list and COQL endpoints return
const MaxPerPage = 200

// Record is a raw CRM record. Its shape is whatever the CRM returned.
type Record map[string]any

// ID returns the CRM record id, or "" when absent
func (r Record) ID() string {
	return r.String("id")
}

// String returns a top-level string field, or "" when absent or not a string
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Identifier is the human-readable label used in error reports: Name, else id
func (r Record) Identifier() string {
	if name := r.String("Name"); name != "" {
		return name
	}
	return r.ID()
}

// Page is one page of list or query results
type Page struct {
	Records     []Record
	MoreRecords bool
}

type listResponse struct {
	Data []Record `json:"data"`
	Info struct {
		MoreRecords bool `json:"more_records"`
		Count       int  `json:"count"`
	} `json:"info"`
}

type Client struct {
	apiURL     string
	httpClient *http.Client
}

func NewClient(apiURL string, httpClient *http.Client) *Client {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 60 * time.Second,
		}
	}
	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: httpClient,
	}
}

// List fetches one page of a module sorted by creation time, newest first
func (c *Client) List(ctx context.Context, accessToken string, module string, page int, perPage int) (*Page, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	query.Set("sort_by", "Created_Time")
	query.Set("sort_order", "desc")

	var resp listResponse
	if err := c.do(ctx, accessToken, http.MethodGet, c.moduleURL(module)+"?"+query.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", module, err)
	}

	log.Printf("[zoho] %s page %d returned %d records (more_records: %v)", module, page, len(resp.Data), resp.Info.MoreRecords)

	return &Page{Records: resp.Data, MoreRecords: resp.Info.MoreRecords}, nil
}

// Query runs a COQL select statement
func (c *Client) Query(ctx context.Context, accessToken string, selectQuery string) (*Page, error) {
	body, err := json.Marshal(map[string]string{"select_query": selectQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	var resp listResponse
	if err := c.do(ctx, accessToken, http.MethodPost, c.apiURL+"/crm/v2/coql", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	log.Printf("[zoho] COQL returned %d records (more_records: %v)", len(resp.Data), resp.Info.MoreRecords)

	return &Page{Records: resp.Data, MoreRecords: resp.Info.MoreRecords}, nil
}

// Search finds records whose field equals value
func (c *Client) Search(ctx context.Context, accessToken string, module string, field string, value string) ([]Record, error) {
	query := url.Values{}
	query.Set("criteria", fmt.Sprintf("(%s:equals:%s)", field, escapeCriteria(value)))

	var resp listResponse
	if err := c.do(ctx, accessToken, http.MethodGet, c.moduleURL(module)+"/search?"+query.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to search %s by %s: %w", module, field, err)
	}
	return resp.Data, nil
}

// Get fetches a single record by its CRM id
func (c *Client) Get(ctx context.Context, accessToken string, module string, id string) ([]Record, error) {
	var resp listResponse
	if err := c.do(ctx, accessToken, http.MethodGet, c.moduleURL(module)+"/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", module, id, err)
	}
	return resp.Data, nil
}

// Related fetches a related list of a parent record
func (c *Client) Related(ctx context.Context, accessToken string, module string, parentID string, relatedList string) ([]Record, error) {
	endpoint := c.moduleURL(module) + "/" + url.PathEscape(parentID) + "/" + url.PathEscape(relatedList)

	var resp listResponse
	if err := c.do(ctx, accessToken, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get %s of %s %s: %w", relatedList, module, parentID, err)
	}
	return resp.Data, nil
}

func (c *Client) moduleURL(module string) string {
	return c.apiURL + "/crm/v2/" + url.PathEscape(module)
}

// do sends the request and decodes a JSON body into out.
// 204 and empty bodies decode to nothing; the CRM uses them for empty results.
func (c *Client) do(ctx context.Context, accessToken string, method string, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// escapeCriteria escapes the characters the search criteria grammar reserves
func escapeCriteria(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, ",", `\,`)
	return replacer.Replace(value)
}
