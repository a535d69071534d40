package eurlex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// DefaultUserAgent is the default User-Agent header sent with EUR-Lex requests.
const DefaultUserAgent = "lexnav-eurlex-connector/1.0"

const (
	// DefaultTimeout bounds a single HTTP request when the default client is used.
	DefaultTimeout = 30 * time.Second
	// DefaultBreakerFailures is the number of consecutive failures that opens the breaker.
	DefaultBreakerFailures = 5
	// DefaultBreakerTimeout is how long the breaker stays open before probing again.
	DefaultBreakerTimeout = 60 * time.Second
	// MaxDocumentSize caps the number of bytes read from a document response.
	MaxDocumentSize = 64 << 20
)

// ErrNotFound is returned when EUR-Lex has no document for the requested CELEX number.
var ErrNotFound = errors.New("eurlex: document not found")

// StatusError reports an unexpected HTTP status from EUR-Lex.
type StatusError struct {
	URL        string
	StatusCode int
}

func (statusError *StatusError) Error() string {
	return fmt.Sprintf("EUR-Lex returned HTTP %d for %s", statusError.StatusCode, statusError.URL)
}

// EURLexClientConfig holds configuration for an EURLexClient.
type EURLexClientConfig struct {
	// RateLimit is the minimum interval between HTTP requests to EUR-Lex.
	// Default: 1 second.
	RateLimit time.Duration

	// CacheTTL is the time-to-live for cached validation results and documents.
	// Default: 1 hour.
	CacheTTL time.Duration

	// Timeout bounds each request made by the default HTTP client.
	// Default: 30 seconds. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient is the underlying HTTP client used for requests.
	// If nil, an *http.Client with Timeout is used (wrapped with rate limiting).
	HTTPClient HTTPClient

	// UserAgent is the User-Agent header sent with requests.
	// Default: "lexnav-eurlex-connector/1.0".
	UserAgent string

	// BreakerFailures is the number of consecutive failed fetches that opens the
	// circuit breaker. Default: 5.
	BreakerFailures uint32

	// BreakerTimeout is how long an open breaker rejects fetches. Default: 60 seconds.
	BreakerTimeout time.Duration

	// Logger receives fetch and breaker events. If nil, nothing is logged.
	Logger *zerolog.Logger
}

// DefaultConfig returns an EURLexClientConfig with sensible defaults.
func DefaultConfig() EURLexClientConfig {
	return EURLexClientConfig{
		RateLimit:       DefaultRequestInterval,
		CacheTTL:        DefaultCacheTTL,
		Timeout:         DefaultTimeout,
		HTTPClient:      nil, // Will use an *http.Client with Timeout.
		UserAgent:       DefaultUserAgent,
		BreakerFailures: DefaultBreakerFailures,
		BreakerTimeout:  DefaultBreakerTimeout,
	}
}

// EURLexClient provides EUR-Lex connectivity: URI validation and document fetching
// with rate limiting, a circuit breaker and caching.
type EURLexClient struct {
	httpClient  HTTPClient
	validations *ResponseCache[ValidationResult]
	documents   *ResponseCache[*FetchedDocument]
	breaker     *gobreaker.CircuitBreaker
	userAgent   string
	logger      zerolog.Logger
}

// NewEURLexClient creates a new EURLexClient with the given configuration.
func NewEURLexClient(config EURLexClientConfig) *EURLexClient {
	underlyingClient := config.HTTPClient
	if underlyingClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		underlyingClient = &http.Client{Timeout: timeout}
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = config.Logger.With().Str("component", "eurlex").Logger()
	}

	return &EURLexClient{
		httpClient:  NewRateLimitedHTTPClient(underlyingClient, config.RateLimit),
		validations: NewResponseCache[ValidationResult](config.CacheTTL),
		documents:   NewResponseCache[*FetchedDocument](config.CacheTTL),
		breaker:     newBreaker(config, logger),
		userAgent:   userAgent,
		logger:      logger,
	}
}

func newBreaker(config EURLexClientConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	failures := config.BreakerFailures
	if failures == 0 {
		failures = DefaultBreakerFailures
	}
	timeout := config.BreakerTimeout
	if timeout <= 0 {
		timeout = DefaultBreakerTimeout
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "eurlex",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A missing document or a cancelled caller says nothing about EUR-Lex health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

// FetchDocument downloads the English HTML rendering of the act with the given CELEX
// number. Successful responses are cached for the configured TTL.
//
// Returns an error wrapping ErrNotFound for HTTP 404 and a *StatusError for other
// status codes >= 400. While the circuit breaker is open, fetches fail immediately
// with an error wrapping gobreaker.ErrOpenState.
func (eurlexClient *EURLexClient) FetchDocument(ctx context.Context, celexNumber string) (*FetchedDocument, error) {
	celexNumber = strings.ToUpper(strings.TrimSpace(celexNumber))
	if celexNumber == "" {
		return nil, fmt.Errorf("CELEX number cannot be empty")
	}

	if cached, found := eurlexClient.documents.Get(celexNumber); found {
		eurlexClient.logger.Debug().Str("celex", celexNumber).Msg("document served from cache")
		return cached, nil
	}

	started := time.Now()
	result, err := eurlexClient.breaker.Execute(func() (interface{}, error) {
		return eurlexClient.fetch(ctx, celexNumber)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CELEX %s: %w", celexNumber, err)
	}

	fetched := result.(*FetchedDocument)
	eurlexClient.documents.Set(celexNumber, fetched)
	eurlexClient.logger.Info().
		Str("celex", celexNumber).
		Int("bytes", len(fetched.Body)).
		Dur("duration", time.Since(started)).
		Msg("document fetched")
	return fetched, nil
}

func (eurlexClient *EURLexClient) fetch(ctx context.Context, celexNumber string) (*FetchedDocument, error) {
	documentURL := DocumentURL(celexNumber)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", documentURL, err)
	}
	request.Header.Set("User-Agent", eurlexClient.userAgent)
	request.Header.Set("Accept", "text/html")

	response, err := eurlexClient.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w (HTTP %d)", ErrNotFound, response.StatusCode)
	}
	if response.StatusCode >= 400 {
		return nil, &StatusError{URL: documentURL, StatusCode: response.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &FetchedDocument{
		CELEX:       celexNumber,
		URL:         documentURL,
		ContentType: response.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   time.Now(),
	}, nil
}

// ValidateURI performs an HTTP HEAD request to the given URI to check if the
// resource exists on EUR-Lex. Results are cached for the configured TTL.
//
// A status code < 400 is considered valid (includes 200, 301, 302 redirects).
// Network errors and status codes >= 400 are considered invalid.
func (eurlexClient *EURLexClient) ValidateURI(ctx context.Context, uri string) (*ValidationResult, error) {
	if cachedResult, found := eurlexClient.validations.Get(uri); found {
		return &cachedResult, nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", uri, err)
	}
	request.Header.Set("User-Agent", eurlexClient.userAgent)

	response, err := eurlexClient.httpClient.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Network failures are expected in normal operation and reported as results.
		networkErrorResult := ValidationResult{
			URI:       uri,
			Valid:     false,
			CheckedAt: time.Now(),
			Error:     err.Error(),
		}
		eurlexClient.validations.Set(uri, networkErrorResult)
		return &networkErrorResult, nil
	}
	defer response.Body.Close()

	validationResult := ValidationResult{
		URI:        uri,
		Valid:      response.StatusCode < 400,
		StatusCode: response.StatusCode,
		CheckedAt:  time.Now(),
	}

	eurlexClient.validations.Set(uri, validationResult)
	return &validationResult, nil
}

// ValidateIdentifier generates an ELI URI from the identifier and validates it
// against EUR-Lex. This is a convenience method combining GenerateELI and ValidateURI.
func (eurlexClient *EURLexClient) ValidateIdentifier(ctx context.Context, identifier Identifier) (*ValidationResult, error) {
	eliURI, err := GenerateELI(identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ELI for identifier: %w", err)
	}

	return eurlexClient.ValidateURI(ctx, eliURI.String())
}
