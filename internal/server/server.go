package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TrendBot/internal/model"
	"TrendBot/internal/notifier"
	"TrendBot/internal/reporter"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const (
	maxBodyBytes   = 1 << 20
	// Slack drops the slash-command response after this long.
	slackAckWindow = 3 * time.Second
)

// Runner runs a trend report for one request and reports failures out of band.
type Runner interface {
	Run(ctx context.Context, req model.Request) (*reporter.Result, error)
	Fail(ctx context.Context, req model.Request, err error)
}

// Handler serves the slash-command endpoint.
type Handler struct {
	runner        Runner
	signingSecret string
	timeout       time.Duration
	ackWindow     time.Duration
	log           *zap.SugaredLogger
}

// NewHandler creates a Handler. An empty signingSecret disables signature checks.
func NewHandler(runner Runner, signingSecret string, timeout time.Duration, log *zap.SugaredLogger) *Handler {
	return &Handler{runner: runner, signingSecret: signingSecret, timeout: timeout, ackWindow: slackAckWindow, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	encoded := strings.EqualFold(r.Header.Get("Content-Transfer-Encoding"), "base64")
	form, err := DecodeBody(body, encoded)
	if err != nil {
		h.log.Warnw("malformed trigger", "error", err)
		writeReply(w, http.StatusBadRequest, model.UserMessage("", err))
		return
	}

	// Slack signs the form body, not the gateway's encoding of it.
	if h.signingSecret != "" {
		if err := h.verify(r.Header, form); err != nil {
			h.log.Warnw("rejected request", "remote", r.RemoteAddr, "error", err)
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	req, err := parseForm(form)
	if err != nil {
		h.log.Warnw("malformed trigger", "error", err)
		writeReply(w, http.StatusBadRequest, model.UserMessage("", err))
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := h.runner.Run(ctx, req)
	if err != nil {
		if time.Since(start) > h.ackWindow {
			// Slack has stopped waiting for the reply below.
			failCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 30*time.Second)
			h.runner.Fail(failCtx, req, err)
			cancel()
		}
		// Slack shows the reply only to the requester.
		writeReply(w, http.StatusOK, notifier.FormatFailure("", req.Ticker, err))
		return
	}
	writeReply(w, http.StatusOK, fmt.Sprintf("Trend report for %s posted.", res.Report.Symbol))
}

func (h *Handler) verify(header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return err
	}
	if _, err := io.Copy(&sv, bytes.NewReader(body)); err != nil {
		return err
	}
	return sv.Ensure()
}

func writeReply(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&slack.Msg{ResponseType: slack.ResponseTypeEphemeral, Text: text})
}

// Server wraps the HTTP listener for the trigger endpoint.
type Server struct {
	srv *http.Server
	log *zap.SugaredLogger
}

// New creates a Server that routes path to h.
func New(addr, path string, h http.Handler, log *zap.SugaredLogger) *Server {
	mux := http.NewServeMux()
	mux.Handle(path, h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	return &Server{
		srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		log: log,
	}
}

// Start listens in the background. Listener errors other than a clean shutdown are sent on the returned channel.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
