package acquiring_bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/fatflowers/paygate/pkg/logctx"
	"github.com/fatflowers/paygate/pkg/metrics"
	"github.com/fatflowers/paygate/pkg/types"
)

var (
	// ErrUpstream marks any failure reported by the bank or on the way to it.
	ErrUpstream            = errors.New("acquiring bank failure")
	// ErrTransactionPending means polling ran out while the bank still reported Accepted.
	ErrTransactionPending  = fmt.Errorf("%w: transaction still pending", ErrUpstream)
	ErrTransactionNotFound = fmt.Errorf("%w: transaction not found", ErrUpstream)
)

const maxErrorBody = 4 << 10

// ResponseError is a non-success HTTP answer from the bank.
type ResponseError struct {
	StatusCode int
	Reason     string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("acquiring bank responded %d: %s", e.StatusCode, e.Reason)
}

func (e *ResponseError) Is(target error) bool { return target == ErrUpstream }

// Client talks to the acquiring bank.
type Client interface {
	// SubmitTransaction posts req under idempotencyKey and returns a terminal
	// record. An Accepted answer is polled until it settles.
	SubmitTransaction(ctx context.Context, req *types.TransactionRequest, idempotencyKey string) (*types.TransactionRecord, error)
	FetchTransaction(ctx context.Context, id uuid.UUID) (*types.TransactionRecord, error)
}

type Options struct {
	BaseURL      string
	ApiKey       string
	Timeout      time.Duration
	PollInterval time.Duration
	PollAttempts int
	HTTPClient   *http.Client
}

type HTTPClient struct {
	baseURL      *url.URL
	apiKey       string
	http         *http.Client
	pollInterval time.Duration
	pollAttempts int
	log          *zap.SugaredLogger
}

func New(opts Options, log *zap.SugaredLogger) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid acquiring bank url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid acquiring bank url %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.PollAttempts < 1 {
		opts.PollAttempts = 1
	}
	return &HTTPClient{
		baseURL:      base,
		apiKey:       opts.ApiKey,
		http:         hc,
		pollInterval: opts.PollInterval,
		pollAttempts: opts.PollAttempts,
		log:          log,
	}, nil
}

func (c *HTTPClient) SubmitTransaction(ctx context.Context, req *types.TransactionRequest, idempotencyKey string) (*types.TransactionRecord, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction request: %w", err)
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(types.HeaderIdempotencyKey, idempotencyKey)

	start := time.Now()
	rec, err := c.do(httpReq)
	if err != nil {
		metrics.ObserveBusinessProcess("bank_client_submit", "error", start)
		return nil, err
	}
	log := logctx.FromCtx(ctx, c.log).With("transaction_id", rec.ID)
	log.Infow("transaction submitted", "status", rec.Status)
	if rec.Status.IsTerminal() {
		metrics.ObserveBusinessProcess("bank_client_submit", rec.Status.String(), start)
		return rec, nil
	}

	settled, err := c.awaitSettlement(ctx, log, rec.ID)
	if err != nil {
		metrics.ObserveBusinessProcess("bank_client_submit", "error", start)
		return nil, err
	}
	metrics.ObserveBusinessProcess("bank_client_submit", "polled_"+settled.Status.String(), start)
	return settled, nil
}

func (c *HTTPClient) FetchTransaction(ctx context.Context, id uuid.UUID) (*types.TransactionRecord, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/transactions/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	rec, err := c.do(httpReq)
	var respErr *ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return rec, err
}

var errStillAccepted = errors.New("transaction still accepted")

// awaitSettlement polls id up to pollAttempts times, pollInterval apart. The
// first poll also waits one interval after the Accepted answer.
func (c *HTTPClient) awaitSettlement(ctx context.Context, log *zap.SugaredLogger, id uuid.UUID) (*types.TransactionRecord, error) {
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to poll transaction %s: %w", id, ctx.Err())
	case <-timer.C:
	}

	var settled *types.TransactionRecord
	backoff := retry.WithMaxRetries(uint64(c.pollAttempts-1), retry.NewConstant(c.pollInterval))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		rec, err := c.FetchTransaction(ctx, id)
		switch {
		case errors.Is(err, ErrTransactionNotFound):
			return err
		case err != nil:
			log.Warnw("poll failed", "attempt", attempt, "err", err)
			return retry.RetryableError(err)
		case !rec.Status.IsTerminal():
			return retry.RetryableError(errStillAccepted)
		}
		settled = rec
		return nil
	})
	switch {
	case err == nil:
		log.Infow("transaction settled", "status", settled.Status, "attempts", attempt)
		return settled, nil
	case errors.Is(err, errStillAccepted):
		log.Warnw("transaction did not settle in time", "attempts", attempt)
		return nil, fmt.Errorf("%w: %s after %d attempts", ErrTransactionPending, id, attempt)
	default:
		return nil, fmt.Errorf("failed to poll transaction %s: %w", id, err)
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build bank request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(types.HeaderApiKey, c.apiKey)
	if tid := logctx.TraceID(ctx); tid != "" {
		req.Header.Set(types.HeaderRequestID, tid)
	}
	return req, nil
}

func (c *HTTPClient) do(req *http.Request) (*types.TransactionRecord, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUpstream, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		reason := strings.TrimSpace(string(b))
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return nil, &ResponseError{StatusCode: resp.StatusCode, Reason: reason}
	}

	var rec types.TransactionRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: failed to decode transaction record: %w", ErrUpstream, err)
	}
	return &rec, nil
}
