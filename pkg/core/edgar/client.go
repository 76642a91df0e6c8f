// Package edgar fetches inline XBRL filings from SEC EDGAR.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	userAgent         = "FilingDigest research@filingdigest.dev"
	submissionsAPIURL = "https://data.sec.gov/submissions/CIK%s.json"
	directoryIndexURL = "https://www.sec.gov/Archives/edgar/data/%s/%s/index.json"
	filingFileURL     = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
)

// reportFragment matches rendered report files (R1.htm, R2.htm, ...)
// that live next to the primary document in the filing directory.
var reportFragment = regexp.MustCompile(`^R\d+\.htm$`)

// Client talks to SEC EDGAR. An optional FilingCache short-circuits
// repeat fetches of the same filing.
type Client struct {
	client      *http.Client
	cache       *FilingCache
	tickerCache map[string]string // Ticker -> CIK (padded)
	tickerMutex sync.Mutex
}

// NewClient creates a new EDGAR client
func NewClient() *Client {
	return &Client{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// SetCache enables file-based caching of fetched filings.
func (c *Client) SetCache(cache *FilingCache) {
	c.cache = cache
}

// SubmissionsResponse from SEC API
type SubmissionsResponse struct {
	CIK     string   `json:"cik"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Filings Filings  `json:"filings"`
}

// Filings contains filing information
type Filings struct {
	Recent RecentFilings `json:"recent"`
}

// RecentFilings contains recent filing arrays
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	ReportDate      []string `json:"reportDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// Filing identifies one filing in the EDGAR archives.
type Filing struct {
	CIK             string
	CompanyName     string
	Accession       string
	Form            string
	FilingDate      string
	ReportDate      string
	PrimaryDocument string
}

// LookupCIK resolves a ticker symbol to a CIK using SEC's company_tickers.json
func (c *Client) LookupCIK(ctx context.Context, ticker string) (string, error) {
	normalizedTicker := strings.ToUpper(strings.TrimSpace(ticker))

	c.tickerMutex.Lock()
	defer c.tickerMutex.Unlock()

	if c.tickerCache == nil {
		c.tickerCache = make(map[string]string)
	}

	if cik, ok := c.tickerCache[normalizedTicker]; ok {
		return cik, nil
	}

	// Lazy load on first miss
	if len(c.tickerCache) == 0 {
		if err := c.loadTickerCache(ctx); err != nil {
			return "", err
		}
		if cik, ok := c.tickerCache[normalizedTicker]; ok {
			return cik, nil
		}
	}

	return "", fmt.Errorf("ticker %s not found in SEC database", ticker)
}

// loadTickerCache fetches the full ticker list from SEC
// Format: {"0": {"cik_str": 123, "ticker": "AAPL", "title": "Apple"}, ...}
func (c *Client) loadTickerCache(ctx context.Context) error {
	fmt.Println("Loading Ticker->CIK map from SEC...")
	body, err := c.fetchURL(ctx, companyTickersURL)
	if err != nil {
		return fmt.Errorf("failed to fetch company tickers: %w", err)
	}

	type TickerEntry struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}

	var resp map[string]TickerEntry
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse ticker JSON: %w", err)
	}

	for _, entry := range resp {
		cikStr := fmt.Sprintf("%010d", entry.CIK)
		c.tickerCache[strings.ToUpper(entry.Ticker)] = cikStr
	}

	fmt.Printf("Loaded %d tickers from SEC.\n", len(c.tickerCache))
	return nil
}

// LatestFiling returns the most recent filing of the given form type
// (e.g. "10-Q", "10-K") for a CIK.
func (c *Client) LatestFiling(ctx context.Context, cik string, form string) (*Filing, error) {
	padded := padCIK(cik)

	body, err := c.fetchURL(ctx, fmt.Sprintf(submissionsAPIURL, padded))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	var resp SubmissionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse submissions JSON: %w", err)
	}

	recent := resp.Filings.Recent
	for i, f := range recent.Form {
		if f != form {
			continue
		}
		filing := &Filing{
			CIK:         padded,
			CompanyName: resp.Name,
			Accession:   recent.AccessionNumber[i],
			Form:        f,
		}
		if i < len(recent.FilingDate) {
			filing.FilingDate = recent.FilingDate[i]
		}
		if i < len(recent.ReportDate) {
			filing.ReportDate = recent.ReportDate[i]
		}
		if i < len(recent.PrimaryDocument) {
			filing.PrimaryDocument = recent.PrimaryDocument[i]
		}
		return filing, nil
	}

	return nil, fmt.Errorf("no %s filing found for CIK %s", form, padded)
}

// FetchFilingHTML retrieves the primary inline XBRL document of a filing.
// The document is located through the filing's index.json: the largest
// .htm file that is not a rendered report fragment.
func (c *Client) FetchFilingHTML(ctx context.Context, cik string, accessionNumber string) (string, error) {
	if c.cache != nil {
		if html := c.cache.Get(cik, accessionNumber); html != "" {
			fmt.Printf("Cache hit for %s/%s\n", cik, accessionNumber)
			return html, nil
		}
	}

	archiveCIK := strings.TrimLeft(padCIK(cik), "0")
	accessionNoDashes := strings.ReplaceAll(accessionNumber, "-", "")

	docName, err := c.findPrimaryDocument(ctx, archiveCIK, accessionNoDashes)
	if err != nil {
		return "", err
	}

	body, err := c.fetchURL(ctx, fmt.Sprintf(filingFileURL, archiveCIK, accessionNoDashes, docName))
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", docName, err)
	}

	html := string(body)
	if c.cache != nil {
		if err := c.cache.Set(cik, accessionNumber, html); err != nil {
			fmt.Printf("⚠️ WARNING: failed to cache filing: %v\n", err)
		}
	}
	return html, nil
}

// directoryIndex is the shape of a filing folder's index.json.
type directoryIndex struct {
	Directory struct {
		Item []struct {
			Name string `json:"name"`
			Size string `json:"size"`
		} `json:"item"`
	} `json:"directory"`
}

func (c *Client) findPrimaryDocument(ctx context.Context, archiveCIK, accessionNoDashes string) (string, error) {
	body, err := c.fetchURL(ctx, fmt.Sprintf(directoryIndexURL, archiveCIK, accessionNoDashes))
	if err != nil {
		return "", fmt.Errorf("failed to fetch filing index: %w", err)
	}

	var index directoryIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return "", fmt.Errorf("failed to parse filing index: %w", err)
	}

	var best string
	var bestSize int
	for _, item := range index.Directory.Item {
		if !strings.HasSuffix(item.Name, ".htm") || reportFragment.MatchString(item.Name) {
			continue
		}
		size, _ := strconv.Atoi(item.Size)
		if best == "" || size > bestSize {
			best = item.Name
			bestSize = size
		}
	}

	if best == "" {
		return "", fmt.Errorf("no primary document found in filing %s", accessionNoDashes)
	}
	return best, nil
}

// Helper functions

func (c *Client) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func padCIK(cik string) string {
	// Remove leading zeros first, then pad to 10 digits
	cik = strings.TrimLeft(cik, "0")
	return fmt.Sprintf("%010s", cik)
}
