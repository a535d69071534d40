package library

import (
	"context"
	"sync"
	"time"

	"github.com/coolbeans/lexnav/pkg/eurlex"
)

// DefaultLinkConcurrency bounds concurrent link checks.
const DefaultLinkConcurrency = 4

// URIValidator checks whether a URI resolves. *eurlex.EURLexClient implements it.
type URIValidator interface {
	ValidateURI(ctx context.Context, uri string) (*eurlex.ValidationResult, error)
}

// LinkStatus is the outcome of checking one canonical link.
type LinkStatus string

const (
	LinkValid   LinkStatus = "valid"
	LinkInvalid LinkStatus = "invalid"
	LinkError   LinkStatus = "error"
	LinkSkipped LinkStatus = "skipped"
)

// LinkResult reports the check of one law's canonical link.
type LinkResult struct {
	Key          string        `json:"key"`
	URI          string        `json:"uri,omitempty"`
	Status       LinkStatus    `json:"status"`
	StatusCode   int           `json:"status_code,omitempty"`
	Error        string        `json:"error,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
}

// IsSuccess returns true if the link resolved.
func (linkResult *LinkResult) IsSuccess() bool {
	return linkResult.Status == LinkValid
}

// LinkReport summarizes a batch of link checks in catalogue order.
type LinkReport struct {
	Results []LinkResult `json:"results"`
	Valid   int          `json:"valid"`
	Invalid int          `json:"invalid"`
	Errors  int          `json:"errors"`
	Skipped int          `json:"skipped"`
}

// CheckLinks validates the canonical link of every entry with at most concurrency
// requests in flight. Entries without a resolvable link are skipped. Results keep
// the order of entries.
func CheckLinks(ctx context.Context, validator URIValidator, entries []*LawEntry, concurrency int) *LinkReport {
	if concurrency <= 0 {
		concurrency = DefaultLinkConcurrency
	}

	results := make([]LinkResult, len(entries))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, entry := range entries {
		uri := ResolveSourceURL(entry, nil)
		if uri == "" {
			results[i] = LinkResult{Key: entry.Key, Status: LinkSkipped}
			continue
		}

		wg.Add(1)
		go func(i int, key, uri string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				results[i] = LinkResult{Key: key, URI: uri, Status: LinkError, Error: ctx.Err().Error()}
				return
			}
			results[i] = checkLink(ctx, validator, key, uri)
		}(i, entry.Key, uri)
	}
	wg.Wait()

	report := &LinkReport{Results: results}
	for _, result := range results {
		switch result.Status {
		case LinkValid:
			report.Valid++
		case LinkInvalid:
			report.Invalid++
		case LinkSkipped:
			report.Skipped++
		default:
			report.Errors++
		}
	}
	return report
}

func checkLink(ctx context.Context, validator URIValidator, key, uri string) LinkResult {
	started := time.Now()
	validation, err := validator.ValidateURI(ctx, uri)
	result := LinkResult{Key: key, URI: uri, ResponseTime: time.Since(started)}

	switch {
	case err != nil:
		result.Status = LinkError
		result.Error = err.Error()
	case validation.Valid:
		result.Status = LinkValid
		result.StatusCode = validation.StatusCode
	case validation.StatusCode == 0:
		// Network failure without a response.
		result.Status = LinkError
		result.Error = validation.Error
	default:
		result.Status = LinkInvalid
		result.StatusCode = validation.StatusCode
	}
	return result
}
