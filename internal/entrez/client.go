package entrez

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the NCBI E-utilities base URL.
	BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultTool is the tool name reported to NCBI on every request.
	DefaultTool = "pubsync"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// NCBI allows 3 requests per second anonymously and 10 with an API key.
	RateLimit        = 3.0
	RateLimitWithKey = 10.0
)

// Client is a rate-limited HTTP client for the NCBI Entrez E-utilities.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	tool       string
	email      string
	apiKey     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the NCBI API key, raising the rate limit tier.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithEmail sets the contact email NCBI asks clients to identify with.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		c.email = email
	}
}

// WithTool sets the tool name reported to NCBI.
func WithTool(tool string) ClientOption {
	return func(c *Client) {
		c.tool = tool
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a new E-utilities client. The NCBI_EMAIL and
// NCBI_API_KEY environment variables seed the identity fields; options
// override them.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    BaseURL,
		tool:       DefaultTool,
	}

	if email := os.Getenv("NCBI_EMAIL"); email != "" {
		c.email = email
	}
	if key := os.Getenv("NCBI_API_KEY"); key != "" {
		c.apiKey = key
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	// The limiter is chosen after options so a key set either way
	// lands in the higher tier.
	limit := rate.Limit(RateLimit)
	if c.apiKey != "" {
		limit = rate.Limit(RateLimitWithKey)
	}
	c.limiter = rate.NewLimiter(limit, 1)

	return c
}

// identity returns the query parameters NCBI asks every client to send.
func (c *Client) identity() url.Values {
	v := url.Values{}
	v.Set("tool", c.tool)
	if c.email != "" {
		v.Set("email", c.email)
	}
	if c.apiKey != "" {
		v.Set("api_key", c.apiKey)
	}
	return v
}

// esearchResponse mirrors the JSON envelope of esearch.fcgi. Counts
// arrive as strings.
type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
		Error  string   `json:"ERROR"`
	} `json:"esearchresult"`
}

// SearchCount returns the number of PubMed records matching term
// without retrieving any identifiers.
func (c *Client) SearchCount(ctx context.Context, term string) (int, error) {
	count, _, err := c.search(ctx, term, 0)
	return count, err
}

// SearchIDs returns up to retmax PMIDs matching term.
func (c *Client) SearchIDs(ctx context.Context, term string, retmax int) ([]string, error) {
	_, ids, err := c.search(ctx, term, retmax)
	return ids, err
}

// SearchAllIDs returns every PMID matching term. ESearch pages are
// capped well below many result sets, so the count is fetched first
// and the full list requested at exactly that size.
func (c *Client) SearchAllIDs(ctx context.Context, term string) ([]string, error) {
	count, err := c.SearchCount(ctx, term)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	return c.SearchIDs(ctx, term, count)
}

func (c *Client) search(ctx context.Context, term string, retmax int) (int, []string, error) {
	params := c.identity()
	params.Set("db", "pubmed")
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(retmax))
	params.Set("retmode", "json")

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return 0, nil, err
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, nil, fmt.Errorf("%w: parsing search response: %v", ErrInvalidResponse, err)
	}
	if resp.Result.Error != "" {
		return 0, nil, &APIError{Endpoint: "esearch", Message: resp.Result.Error}
	}

	count, err := strconv.Atoi(resp.Result.Count)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: count %q is not a number", ErrInvalidResponse, resp.Result.Count)
	}

	return count, resp.Result.IDList, nil
}

// FetchMedline retrieves full MEDLINE records for the given PMIDs. The
// request is POSTed because ID lists routinely exceed URL length limits.
func (c *Client) FetchMedline(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := c.identity()
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("rettype", "medline")
	params.Set("retmode", "text")

	body, err := c.postForm(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, err
	}

	records, err := ParseMedline(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.do(req, endpoint)
}

func (c *Client) postForm(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, endpoint)
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, endpoint); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetworkError, err)
	}
	return body, nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, endpoint string) error {
	if resp.StatusCode == 429 {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}
