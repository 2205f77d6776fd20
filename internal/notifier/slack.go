package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"TrendBot/internal/config"
	"TrendBot/internal/model"
	"TrendBot/internal/retry"

	"github.com/go-resty/resty/v2"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// FileUploader is the part of the Slack Web API used to share charts.
type FileUploader interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

// SlackNotifier posts text through an incoming webhook and uploads files with the Web API.
type SlackNotifier struct {
	WebhookURL string
	client     *resty.Client
	files      FileUploader
	policy     retry.Policy
	log        *zap.SugaredLogger
}

// NewSlackNotifier creates a notifier with optional proxy support.
func NewSlackNotifier(webhookURL, botToken, apiURL string, opts config.HTTP, log *zap.SugaredLogger) *SlackNotifier {
	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	httpClient := &http.Client{Timeout: opts.Timeout, Transport: transport}

	client := resty.NewWithClient(httpClient).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(4 * opts.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	api := slack.New(botToken, slack.OptionAPIURL(apiURL), slack.OptionHTTPClient(httpClient))
	return newSlackNotifier(webhookURL, client, api, retry.Policy{Retries: opts.Retries, BaseWait: opts.RetryWait, MaxWait: 4 * opts.RetryWait}, log)
}

func newSlackNotifier(webhookURL string, client *resty.Client, files FileUploader, policy retry.Policy, log *zap.SugaredLogger) *SlackNotifier {
	return &SlackNotifier{WebhookURL: webhookURL, client: client, files: files, policy: policy, log: log}
}

// Post sends a text message to the configured webhook.
func (n *SlackNotifier) Post(ctx context.Context, text string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": text}).
		Post(n.WebhookURL)
	if err != nil {
		return fmt.Errorf("%w: send message: %v", model.ErrUpstream, err)
	}
	switch {
	case resp.StatusCode() == http.StatusOK:
		return nil
	case resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500:
		return fmt.Errorf("%w: slack webhook status %d", model.ErrUpstream, resp.StatusCode())
	default:
		return fmt.Errorf("slack webhook error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
}

// Upload shares the file at path into channel under title, retrying transient failures.
func (n *SlackNotifier) Upload(ctx context.Context, channel, title, path string) error {
	return retry.Do(ctx, n.policy, func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open chart: %w", err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat chart: %w", err)
		}

		_, err = n.files.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
			Reader:   f,
			FileSize: int(info.Size()),
			Filename: filepath.Base(path),
			Title:    title,
			Channel:  channel,
		})
		if err != nil {
			err = classifyUploadErr(ctx, err)
			if retry.Retryable(err) {
				n.log.Warnw("slack upload failed, retrying", "channel", channel, "error", err)
			}
			return err
		}
		return nil
	})
}

func classifyUploadErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return fmt.Errorf("%w: upload file: %v", model.ErrUpstream, err)
	}
	var status slack.StatusCodeError
	if errors.As(err, &status) {
		if status.Code >= 500 {
			return fmt.Errorf("%w: upload file: %v", model.ErrUpstream, err)
		}
		return fmt.Errorf("upload file: %w", err)
	}
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		return fmt.Errorf("upload file: %w", err)
	}
	return fmt.Errorf("%w: upload file: %v", model.ErrUpstream, err)
}
