package moneybag

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
	defaultBackoff = 1 * time.Second
)

// Result is the decoded outcome of one HTTP exchange with the gateway.
// Success is true only for a 2xx response with a JSON body; a 2xx with an
// empty or non-JSON body comes back as a soft failure carrying the raw bytes.
type Result struct {
	Success    bool
	StatusCode int
	Message    string
	Raw        []byte
	Body       map[string]any
}

// HTTPClient performs raw exchanges with the Moneybag REST API. Transport
// failures (DNS, refused connection, TLS handshake) are retried with
// exponential backoff; once any HTTP response arrives, retrying stops and the
// status is returned in the Result for the caller to classify. Configuration
// is read-only after construction, so one client is safe for concurrent use.
type HTTPClient struct {
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	debug      bool
}

func NewHTTPClient(timeout time.Duration, maxRetries int, debug bool) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxRetries <= 0 {
		maxRetries = defaultRetries
	}
	return &HTTPClient{
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff:    defaultBackoff,
		debug:      debug,
	}
}

func (c *HTTPClient) Get(ctx context.Context, url string, headers map[string]string) (*Result, error) {
	return c.do(ctx, http.MethodGet, url, headers, nil)
}

func (c *HTTPClient) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Result, error) {
	return c.do(ctx, http.MethodPost, url, headers, body)
}

func (c *HTTPClient) do(ctx context.Context, method, url string, headers map[string]string, body []byte) (*Result, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			// 1s, 2s, 4s, ...
			delay := c.backoff * (1 << (attempt - 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, newTransportError("request cancelled during retry backoff: " + ctx.Err().Error())
			}
		}
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, newTransportError("build request: " + err.Error())
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if c.debug && body != nil {
			log.Printf("[Moneybag] %s %s body=%s", method, url, string(body))
		}
		resp, err := c.client.Do(req)
		if err != nil {
			if isCertTrustError(err) {
				// A missing or stale CA bundle will never heal on retry.
				return nil, newTransportError("TLS certificate verification failed: " + err.Error() +
					"; ask your hosting administrator to install or update the CA bundle")
			}
			lastErr = err
			if c.debug {
				log.Printf("[Moneybag] %s %s attempt %d/%d failed: %v", method, url, attempt+1, c.maxRetries, err)
			}
			continue
		}
		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}
		if c.debug {
			log.Printf("[Moneybag] %s %s status=%d body=%s", method, url, resp.StatusCode, string(raw))
		}
		return parseResult(resp.StatusCode, raw), nil
	}
	return nil, newTransportError(fmt.Sprintf("request failed after %d attempts: %v", c.maxRetries, lastErr))
}

func parseResult(status int, raw []byte) *Result {
	res := &Result{StatusCode: status, Raw: raw}
	if len(bytes.TrimSpace(raw)) > 0 {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err == nil {
			res.Body = body
		}
	}
	if status >= 200 && status < 300 {
		if res.Body == nil {
			res.Message = "empty response from gateway"
			return res
		}
		res.Success = true
		return res
	}
	res.Message = http.StatusText(status)
	return res
}

// isCertTrustError detects TLS failures caused by an untrusted or invalid
// server certificate, as opposed to ordinary network errors.
func isCertTrustError(err error) bool {
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	var certInvalid x509.CertificateInvalidError
	if errors.As(err, &certInvalid) {
		return true
	}
	var verifyErr *tls.CertificateVerificationError
	return errors.As(err, &verifyErr)
}
