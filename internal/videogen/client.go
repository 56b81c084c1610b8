package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	maxErrorBody          = 1024
)

// httpStatusError carries a non-2xx response from the remote API
type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("remote api returned %d: %s", e.StatusCode, e.Body)
}

type submitResponse struct {
	ID    string `json:"id"`
	JobID string `json:"job_id"`
}

type statusResponse struct {
	Status          string `json:"status"`
	ResultURL       string `json:"result_url"`
	ResultReference string `json:"result_reference"`
	Message         string `json:"message"`
}

func (s statusResponse) reference() string {
	if s.ResultURL != "" {
		return s.ResultURL
	}
	return s.ResultReference
}

type remoteClient struct {
	httpClient    *http.Client
	endpoint      string
	apiKey        string
	retryAttempts int
	baseDelay     time.Duration
	maxDelay      time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
}

func newRemoteClient(httpClient *http.Client, endpoint, apiKey string, retryAttempts int) *remoteClient {
	if retryAttempts <= 0 {
		retryAttempts = 1
	}
	return &remoteClient{
		httpClient:    httpClient,
		endpoint:      endpoint,
		apiKey:        apiKey,
		retryAttempts: retryAttempts,
		baseDelay:     defaultRetryBaseDelay,
		maxDelay:      defaultRetryMaxDelay,
		sleep:         sleepWithContext,
	}
}

// submit uploads the photo and audio and returns the job id
func (c *remoteClient) submit(ctx context.Context, photoName string, photo []byte, audioPath string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writePart(mw, "source_image", photoName, photo); err != nil {
		return "", err
	}
	if err := writePart(mw, "audio", filepath.Base(audioPath), audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	payload := body.Bytes()
	var data []byte
	err = c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	}, readInto(&data))
	if err != nil {
		return "", err
	}

	var resp submitResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if resp.ID != "" {
		return resp.ID, nil
	}
	if resp.JobID != "" {
		return resp.JobID, nil
	}
	return "", fmt.Errorf("submit response carries no job id")
}

func writePart(mw *multipart.Writer, field, name string, data []byte) error {
	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}

// status queries one job; transient failures are retried inside this call
func (c *remoteClient) status(ctx context.Context, id string) (statusResponse, error) {
	var data []byte
	err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+id, nil)
	}, readInto(&data))
	if err != nil {
		return statusResponse{}, err
	}

	var resp statusResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return statusResponse{}, fmt.Errorf("decode status response: %w", err)
	}
	return resp, nil
}

// download streams the finished video into dest. A relative reference is
// resolved against the endpoint. The result host only sees the API key when
// it is the endpoint's own host.
func (c *remoteClient) download(ctx context.Context, ref, dest string) error {
	target, err := c.resolve(ref)
	if err != nil {
		return err
	}
	return c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}, func(body io.Reader) error {
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create %s: %w", dest, err)
		}
		n, copyErr := io.Copy(f, body)
		if err := f.Close(); err != nil && copyErr == nil {
			copyErr = err
		}
		if copyErr != nil {
			return fmt.Errorf("write result: %w", copyErr)
		}
		if n == 0 {
			return fmt.Errorf("result %s is empty", ref)
		}
		return nil
	})
}

func (c *remoteClient) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse result reference %q: %w", ref, err)
	}
	if u.IsAbs() {
		return ref, nil
	}
	base, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}

// authorizes reports whether requests to u may carry the API key
func (c *remoteClient) authorizes(u *url.URL) bool {
	base, err := url.Parse(c.endpoint)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}

func readInto(dst *[]byte) func(io.Reader) error {
	return func(body io.Reader) error {
		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*dst = data
		return nil
	}
}

// do sends the request built by build and hands a 2xx body to read,
// retrying transient failures with backoff
func (c *remoteClient) do(ctx context.Context, build func() (*http.Request, error), read func(io.Reader) error) error {
	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		err := c.once(build, read)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == c.retryAttempts || !isTransient(ctx, err) {
			break
		}
		if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

func (c *remoteClient) once(build func() (*http.Request, error), read func(io.Reader) error) error {
	req, err := build()
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" && c.authorizes(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return read(resp.Body)
}

func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusRequestTimeout ||
			statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, capped at maxDelay
func (c *remoteClient) backoffDelay(attempt int) time.Duration {
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.maxDelay/2 {
			return c.maxDelay
		}
		delay *= 2
	}
	return delay
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
