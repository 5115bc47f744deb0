package client

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"veostudio/internal/models"
)

// Progress messages emitted by Generate, in order.
const (
	MsgSubmitting = "Starting video generation process..."
	MsgPolling    = "Video operation started. Polling for completion..."
	MsgFetching   = "Video processing complete. Fetching video file..."
	MsgDownloaded = "Download complete!"
)

const DefaultPollInterval = 10 * time.Second

// ProgressSink receives human-readable progress for one Generate call.
type ProgressSink interface {
	OnProgress(message string)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(message string)

func (f ProgressFunc) OnProgress(message string) {
	if f != nil {
		f(message)
	}
}

type Config struct {
	// PollInterval is the wait before each status query. Zero means DefaultPollInterval.
	PollInterval time.Duration
	// MaxPollAttempts caps status queries per job. Zero means no cap.
	MaxPollAttempts int
	HTTPClient      *http.Client
	// Sleep waits d or until ctx is done. Nil means a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Result is the downloaded media of a finished job.
type Result struct {
	Data     []byte
	MIMEType string
	URI      string
}

// Client runs a generation end to end: submit, poll, resolve, download.
type Client struct {
	newProvider  ProviderFactory
	pollInterval time.Duration
	maxPolls     int
	httpClient   *http.Client
	sleep        func(ctx context.Context, d time.Duration) error
}

func New(newProvider ProviderFactory, cfg Config) *Client {
	c := &Client{
		newProvider:  newProvider,
		pollInterval: cfg.PollInterval,
		maxPolls:     cfg.MaxPollAttempts,
		httpClient:   cfg.HTTPClient,
		sleep:        cfg.Sleep,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	return c
}

// job is the state of one Generate call.
type job struct {
	op    *Operation
	polls int
}

// Generate submits req with credential and blocks until the video is
// downloaded or a stage fails. Every failure is an *Error; nothing is retried.
func (c *Client) Generate(ctx context.Context, credential string, req models.GenerationRequest, sink ProgressSink) (*Result, error) {
	if sink == nil {
		sink = ProgressFunc(nil)
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrMissingCredential
	}

	provider, err := c.newProvider(ctx, credential)
	if err != nil {
		return nil, newError(KindSubmissionFailed, ErrSubmissionFailed.Message, err)
	}

	sink.OnProgress(MsgSubmitting)
	op, err := provider.Submit(ctx, Submission{
		Model:  req.ModelVariant,
		Prompt: req.Prompt,
		Image:  req.ReferenceImage,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, newError(KindCancelled, ErrCancelled.Message, ctx.Err())
		}
		log.Printf("video client: submit failed: %v", err)
		return nil, newError(KindSubmissionFailed, ErrSubmissionFailed.Message, err)
	}
	sink.OnProgress(MsgPolling)

	j := &job{op: op}
	if err := c.waitDone(ctx, provider, j); err != nil {
		return nil, err
	}
	sink.OnProgress(MsgFetching)

	uri := strings.TrimSpace(j.op.VideoURI)
	if uri == "" {
		log.Printf("video client: operation %s finished without a video uri (%s)", j.op.Name, j.op.ErrorMessage)
		e := newError(KindNoResultLocator, ErrNoResultLocator.Message, nil)
		if j.op.ErrorMessage != "" {
			e.Message += " (" + j.op.ErrorMessage + ")"
		}
		return nil, e
	}

	res, err := c.fetch(ctx, uri, credential)
	if err != nil {
		return nil, err
	}
	sink.OnProgress(MsgDownloaded)
	return res, nil
}

func (c *Client) waitDone(ctx context.Context, provider Provider, j *job) error {
	for !j.op.Done {
		if c.maxPolls > 0 && j.polls >= c.maxPolls {
			return newError(KindPollFailed, fmt.Sprintf("gave up waiting for the video after %d status checks", j.polls), nil)
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return newError(KindCancelled, ErrCancelled.Message, err)
		}
		next, err := provider.Poll(ctx, j.op)
		j.polls++
		if err != nil {
			if ctx.Err() != nil {
				return newError(KindCancelled, ErrCancelled.Message, ctx.Err())
			}
			log.Printf("video client: polling %s failed: %v", j.op.Name, err)
			return newError(KindPollFailed, ErrPollFailed.Message, err)
		}
		j.op = next
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, uri, credential string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authenticatedURL(uri, credential), nil)
	if err != nil {
		return nil, newError(KindDownloadFailed, ErrDownloadFailed.Message, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newError(KindCancelled, ErrCancelled.Message, ctx.Err())
		}
		return nil, newError(KindDownloadFailed, ErrDownloadFailed.Message, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:    KindDownloadFailed,
			Message: fmt.Sprintf("%s, status: %s", ErrDownloadFailed.Message, resp.Status),
			Status:  resp.Status,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindDownloadFailed, ErrDownloadFailed.Message, err)
	}
	return &Result{
		Data:     data,
		MIMEType: resp.Header.Get("Content-Type"),
		URI:      uri,
	}, nil
}

// authenticatedURL appends the API key the result URI needs to be fetchable.
func authenticatedURL(uri, credential string) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + "key=" + url.QueryEscape(credential)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
