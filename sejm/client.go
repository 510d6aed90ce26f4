package sejm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a thin client for the Sejm ELI API, which publishes Polish
// legislative acts. It knows nothing about summaries or persistence; the
// services compose it.
//
// Base URL example: https://api.sejm.gov.pl/eli

const defaultBaseURL = "https://api.sejm.gov.pl/eli"

var ErrNotFound = errors.New("act not found")

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// Act is one legislative act as listed by the ELI API.
type Act struct {
	ELI              string `json:"ELI"`
	Title            string `json:"title"`
	Year             int    `json:"year"`
	Pos              int    `json:"pos"`
	Status           string `json:"status"`
	Type             string `json:"type"`
	Publisher        string `json:"publisher"`
	DisplayAddress   string `json:"displayAddress"`
	AnnouncementDate string `json:"announcementDate"`
	TextPDF          bool   `json:"textPDF"`
	TextHTML         bool   `json:"textHTML"`
}

// ActDetails extends Act with the fields only the single-act endpoint
// returns.
type ActDetails struct {
	Act
	Promulgation   string   `json:"promulgation"`
	EntryIntoForce string   `json:"entryIntoForce"`
	Keywords       []string `json:"keywords"`
}

// ListActsResponse mirrors the ELI list envelope.
type ListActsResponse struct {
	TotalCount int   `json:"totalCount"`
	Count      int   `json:"count"`
	Offset     int   `json:"offset"`
	Items      []Act `json:"items"`
}

// ListActs lists acts of a publisher (e.g. "DU") and year with paging.
func (c *Client) ListActs(ctx context.Context, publisher string, year, offset, limit int) (*ListActsResponse, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/acts/%s/%d?%s", c.baseURL, url.PathEscape(publisher), year, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("eli ListActs: status=%d body=%s", resp.StatusCode, string(b))
	}

	var out ListActsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAct fetches the details of a single act.
func (c *Client) GetAct(ctx context.Context, publisher string, year, pos int) (*ActDetails, error) {
	endpoint := fmt.Sprintf("%s/acts/%s/%d/%d", c.baseURL, url.PathEscape(publisher), year, pos)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("eli GetAct: status=%d body=%s", resp.StatusCode, string(b))
	}

	var out ActDetails
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetActHTML fetches the HTML text of an act. Not every act carries one;
// callers should check Act.TextHTML first.
func (c *Client) GetActHTML(ctx context.Context, publisher string, year, pos int) (string, error) {
	endpoint := fmt.Sprintf("%s/acts/%s/%d/%d/text.html", c.baseURL, url.PathEscape(publisher), year, pos)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("eli GetActHTML: status=%d body=%s", resp.StatusCode, string(b))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
