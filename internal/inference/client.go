// Package inference is the HTTP client for the external emotion scoring
// service.
//
// One Analyze call is one POST with no retries. Diary text is normalized to
// Unicode NFC before it is sent; it is never logged or attached to spans.
// Replies are decoded into a typed Response and validated before use.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/diary-emotion-backend/internal/config"
	"github.com/tbourn/diary-emotion-backend/internal/domain"
)

// Request is the JSON body sent to the scoring endpoint. A blank ModelType
// and a nil UseFallback take the client's configured defaults.
type Request struct {
	Text        string `json:"text"`
	ModelType   string `json:"model_type"`
	UseFallback *bool  `json:"use_fallback"`
}

// Response is the scoring endpoint's reply. Emotion is required; label and
// probabilities may be null.
type Response struct {
	Emotion       *int               `json:"emotion" validate:"required"`
	EmotionLabel  *string            `json:"emotion_label"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// MaxProbability returns the largest probability, or 0 when there are none.
func (r *Response) MaxProbability() float64 {
	if r == nil || len(r.Probabilities) == 0 {
		return 0
	}
	first := true
	var best float64
	for _, p := range r.Probabilities {
		if first || p > best {
			best, first = p, false
		}
	}
	return best
}

// ResolvedLabel prefers a non-blank label from the reply, then the static
// code table. Unknown codes yield nil.
func (r *Response) ResolvedLabel() *string {
	if r == nil {
		return nil
	}
	if r.EmotionLabel != nil {
		if l := strings.TrimSpace(*r.EmotionLabel); l != "" {
			return &l
		}
	}
	if r.Emotion == nil {
		return nil
	}
	if l, ok := domain.LabelFor(*r.Emotion); ok {
		return &l
	}
	return nil
}

// Client calls the emotion scoring endpoint.
type Client struct {
	url         string
	modelType   string
	useFallback bool

	hc       *http.Client
	dialer   *net.Dialer // nil on a caller-supplied http.Client
	validate *validator.Validate
}

// New builds a Client whose transport enforces cfg.ConnectTimeout on dial
// and cfg.ReadTimeout on the whole exchange.
func New(cfg config.EmotionConfig) *Client {
	d := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         d.DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
	}
	c := NewWithHTTPClient(cfg, &http.Client{Transport: tr, Timeout: cfg.ReadTimeout})
	c.dialer = d
	return c
}

// NewWithHTTPClient builds a Client on a caller-supplied http.Client.
func NewWithHTTPClient(cfg config.EmotionConfig, hc *http.Client) *Client {
	return &Client{
		url:         cfg.URL,
		modelType:   cfg.ModelType,
		useFallback: cfg.UseFallback,
		hc:          hc,
		validate:    validator.New(),
	}
}

// Analyze scores req.Text. Errors wrap ErrUpstreamStatus (via *StatusError),
// ErrUpstreamUnavailable or ErrBadResponse.
func (c *Client) Analyze(ctx context.Context, req Request) (*Response, error) {
	req = c.withDefaults(req)

	ctx, span := otel.Tracer("inference/Client").Start(ctx, "Analyze",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("emotion.model_type", req.ModelType),
			attribute.Bool("emotion.use_fallback", *req.UseFallback),
			attribute.Int("emotion.text_runes", utf8.RuneCountInString(req.Text)),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.do(ctx, req)
	observe(err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcomeOf(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("emotion.code", *resp.Emotion))
	return resp, nil
}

func (c *Client) withDefaults(req Request) Request {
	req.Text = norm.NFC.String(req.Text)
	if strings.TrimSpace(req.ModelType) == "" {
		req.ModelType = c.modelType
	}
	if req.UseFallback == nil {
		fb := c.useFallback
		req.UseFallback = &fb
	}
	return req
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstreamUnavailable, err)
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return &out, nil
}
