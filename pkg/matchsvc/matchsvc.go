// Package matchsvc provides candidate name similarity lookup for the
// nomination dedup workflow.
package matchsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ogforum/excovote/internal/logger"
)

// DefaultMaxDistance is the edit-distance ceiling for a name to count
// as a possible match.
const DefaultMaxDistance = 3

// Suggestion is a stored candidate whose canonical name is close to a
// submitted name.
type Suggestion struct {
	CandidateID   string `json:"candidate_id"`
	CanonicalName string `json:"canonical_name"`
	Distance      int    `json:"distance"`
}

// Client defines the interface for name similarity lookups
type Client interface {
	// FindSimilar returns stored candidates for the position whose
	// canonical names are within edit distance of name, closest first.
	// An exact match is returned with distance zero.
	FindSimilar(ctx context.Context, name, position string) ([]Suggestion, error)
}

// ==================== HTTP client ====================

// HTTPClient queries an external matcher service over HTTP
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	log         logger.Logger
	maxDistance int
}

// NewHTTPClient creates a matcher client for the given base URL
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:         log,
		maxDistance: DefaultMaxDistance,
	}
}

// NewHTTPClientWithHTTPClient creates a matcher client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		log:         log,
		maxDistance: DefaultMaxDistance,
	}
}

type findSimilarResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// FindSimilar queries the matcher service for names close to name
func (c *HTTPClient) FindSimilar(ctx context.Context, name, position string) ([]Suggestion, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("position", position)
	params.Set("max_distance", fmt.Sprintf("%d", c.maxDistance))

	apiURL := fmt.Sprintf("%s/api/similar?%s", c.baseURL, params.Encode())
	c.log.Debug("matcher request", "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to matcher: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("matcher returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed findSimilarResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return parsed.Suggestions, nil
}

// ==================== Local client ====================

// CandidateSource supplies the stored candidates a LocalClient matches
// against. The repository satisfies this.
type CandidateSource interface {
	ListCandidateNames(ctx context.Context, position string) (map[string]string, error)
}

// LocalClient computes similarity in-process against stored candidates.
// Used when no external matcher service is configured.
type LocalClient struct {
	source      CandidateSource
	maxDistance int
}

// NewLocalClient creates an in-process matcher over the given source
func NewLocalClient(source CandidateSource) *LocalClient {
	return &LocalClient{
		source:      source,
		maxDistance: DefaultMaxDistance,
	}
}

// FindSimilar returns stored candidates within edit distance of name,
// closest first, ties broken by canonical name
func (c *LocalClient) FindSimilar(ctx context.Context, name, position string) ([]Suggestion, error) {
	names, err := c.source.ListCandidateNames(ctx, position)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	target := strings.ToLower(strings.TrimSpace(name))

	var suggestions []Suggestion
	for canonical, id := range names {
		d := Levenshtein(target, strings.ToLower(canonical))
		if d <= c.maxDistance {
			suggestions = append(suggestions, Suggestion{
				CandidateID:   id,
				CanonicalName: canonical,
				Distance:      d,
			})
		}
	}

	sortSuggestions(suggestions)
	return suggestions, nil
}

func sortSuggestions(s []Suggestion) {
	// Small lists, insertion sort keeps it dependency free
	for i := 1; i < len(s); i++ {
		for j := i; j > 0; j-- {
			a, b := s[j-1], s[j]
			if a.Distance < b.Distance || (a.Distance == b.Distance && a.CanonicalName <= b.CanonicalName) {
				break
			}
			s[j-1], s[j] = b, a
		}
	}
}

// Levenshtein returns the edit distance between two strings, counting
// insertions, deletions and substitutions at unit cost.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
