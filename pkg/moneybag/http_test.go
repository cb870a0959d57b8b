package moneybag

import (
	"context"
	"crypto/x509"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport fails the first `failures` calls with err, then answers with
// the configured status and body.
type fakeTransport struct {
	failures int
	err      error
	status   int
	body     string
	calls    int
}

func (f *fakeTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Header:     make(http.Header),
	}, nil
}

func newRetryClient(t *testing.T, transport *fakeTransport, maxRetries int, backoff time.Duration) *HTTPClient {
	t.Helper()
	c := NewHTTPClient(time.Second, maxRetries, false)
	c.client.Transport = transport
	c.backoff = backoff
	return c
}

func TestRetrySucceedsAfterTransportFailures(t *testing.T) {
	ft := &fakeTransport{
		failures: 2,
		err:      io.ErrUnexpectedEOF,
		status:   http.StatusOK,
		body:     `{"success":true,"data":{}}`,
	}
	backoff := 20 * time.Millisecond
	c := newRetryClient(t, ft, 3, backoff)

	start := time.Now()
	res, err := c.Get(context.Background(), "https://gateway.test/ping", nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, ft.calls)
	// two backoff sleeps: base*2^0 + base*2^1
	assert.GreaterOrEqual(t, elapsed, 3*backoff)
}

func TestRetryExhaustionRaisesTransportError(t *testing.T) {
	ft := &fakeTransport{failures: 10, err: io.ErrUnexpectedEOF}
	c := newRetryClient(t, ft, 3, time.Millisecond)

	res, err := c.Get(context.Background(), "https://gateway.test/ping", nil)

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, ft.calls)
}

func TestCertTrustFailureFailsFast(t *testing.T) {
	ft := &fakeTransport{failures: 10, err: x509.UnknownAuthorityError{}}
	c := newRetryClient(t, ft, 3, time.Millisecond)

	_, err := c.Get(context.Background(), "https://gateway.test/ping", nil)

	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "CA bundle")
	assert.Equal(t, 1, ft.calls, "certificate failures must not be retried")
}

func TestHTTPErrorStatusIsNotRetried(t *testing.T) {
	ft := &fakeTransport{status: http.StatusInternalServerError, body: `{"success":false,"message":"boom"}`}
	c := newRetryClient(t, ft, 3, time.Millisecond)

	res, err := c.Get(context.Background(), "https://gateway.test/ping", nil)

	require.NoError(t, err, "HTTP error statuses are results, not errors")
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, 1, ft.calls)
	assert.Equal(t, "boom", res.Body["message"])
}

func TestEmptyBodyIsSoftFailure(t *testing.T) {
	ft := &fakeTransport{status: http.StatusOK, body: ""}
	c := newRetryClient(t, ft, 3, time.Millisecond)

	res, err := c.Post(context.Background(), "https://gateway.test/ping", nil, []byte(`{}`))

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Message, "empty response")
}

func TestNonJSONBodyIsSoftFailure(t *testing.T) {
	ft := &fakeTransport{status: http.StatusOK, body: "<html>maintenance</html>"}
	c := newRetryClient(t, ft, 3, time.Millisecond)

	res, err := c.Get(context.Background(), "https://gateway.test/ping", nil)

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Body)
	assert.Equal(t, []byte("<html>maintenance</html>"), res.Raw)
}

func TestBackoffRespectsContextCancellation(t *testing.T) {
	ft := &fakeTransport{failures: 10, err: io.ErrUnexpectedEOF}
	c := newRetryClient(t, ft, 3, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := c.Get(ctx, "https://gateway.test/ping", nil)

	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "cancelled")
	assert.Less(t, time.Since(start), time.Second, "cancellation must interrupt the backoff sleep")
}
