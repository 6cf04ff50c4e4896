// Package trpc is the signed HTTP binding to the game's private tRPC API. It
// owns request signing, JSONL response framing, transient-failure retry with
// exponential backoff and jitter, and the classification of server errors
// into the reasons the engine branches on.
package trpc

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jpillora/backoff"

	"appleville.bot/internal/game"
)

const (
	DefaultBaseURL = "https://app.appleville.xyz/api/trpc"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36"

	jsonlAccept = "application/jsonl"
	jsonAccept  = "application/json"
)

// The signing secret ships inside the game's web bundle, assembled from
// shuffled fragments. Same assembly order here.
func deriveSecret() string {
	parts := []string{"bbsds!eda", "2", "3ed2@#@!@#Ffdf#@!", "4"}
	idx := []int{2, 1, 0, 2, 1, 2}
	var b strings.Builder
	for _, i := range idx {
		b.WriteString(parts[i])
	}
	return b.String()
}

var secret = deriveSecret()

// Client is a per-account API binding. One account's calls are issued
// strictly sequentially by the engine, so Client keeps no mutable state and
// is cheap to hold per task.
type Client struct {
	base      string
	cookie    string
	authToken string
	userAgent string

	hc       *http.Client
	attempts int
	minDelay time.Duration
	maxDelay time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.base = strings.TrimRight(strings.TrimSpace(u), "/") }
}

func WithAuthToken(tok string) Option {
	return func(c *Client) { c.authToken = strings.TrimSpace(tok) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

func WithRetryDelays(min, max time.Duration) Option {
	return func(c *Client) {
		if min > 0 {
			c.minDelay = min
		}
		if max > 0 {
			c.maxDelay = max
		}
	}
}

func New(cookie string, opts ...Option) *Client {
	c := &Client{
		base:      DefaultBaseURL,
		cookie:    strings.TrimSpace(cookie),
		userAgent: defaultUserAgent,
		hc:        &http.Client{Timeout: 30 * time.Second},
		attempts:  5,
		minDelay:  400 * time.Millisecond,
		maxDelay:  5 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type signature struct {
	sig   string
	ts    int64
	nonce string
}

func signString(payload string) signature {
	nb := make([]byte, 16)
	_, _ = rand.Read(nb)
	nonce := hex.EncodeToString(nb)
	ts := time.Now().UnixMilli()

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s.%s", ts, nonce, payload)
	return signature{sig: hex.EncodeToString(mac.Sum(nil)), ts: ts, nonce: nonce}
}

func signPayload(v any) signature {
	if v == nil {
		return signString("{}")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return signString("{}")
	}
	return signString(string(raw))
}

func (c *Client) headers(req *http.Request, sig signature, accept string, post bool) {
	h := req.Header
	h.Set("accept", "*/*")
	h.Set("user-agent", c.userAgent)
	h.Set("origin", "https://app.appleville.xyz")
	h.Set("referer", "https://app.appleville.xyz/")
	h.Set("cookie", c.cookie)
	h.Set("trpc-accept", accept)
	h.Set("x-trpc-source", "nextjs-react")
	h.Set("x-xcsa3d", sig.sig)
	h.Set("x-dbsv", strconv.FormatInt(sig.ts, 10))
	h.Set("x-dsa", sig.nonce)
	if post {
		h.Set("content-type", "application/json")
	}
	if c.authToken != "" {
		h.Set("authorization", c.authToken)
	}
}

var retryAfterRe = regexp.MustCompile(`^\d+$`)

// do issues one request with bounded retries. 429 and 5xx responses and raw
// transport errors are retried with exponential backoff plus jitter, honoring
// Retry-After when the server sends one. Context cancellation aborts between
// attempts.
func (c *Client) do(ctx context.Context, op string, build func() (*http.Request, error)) ([]byte, error) {
	bo := &backoff.Backoff{Min: c.minDelay, Max: c.maxDelay, Factor: 1.6, Jitter: true}
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &CallError{Op: op, Reason: ReasonTransport, cause: err}
		}
		req, err := build()
		if err != nil {
			return nil, &CallError{Op: op, Reason: ReasonTransport, cause: err}
		}
		resp, err := c.hc.Do(req.WithContext(ctx))
		if err != nil {
			lastErr = err
			if err := sleepCtx(ctx, bo.Duration()); err != nil {
				return nil, &CallError{Op: op, Reason: ReasonTransport, cause: err}
			}
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if err := sleepCtx(ctx, bo.Duration()); err != nil {
				return nil, &CallError{Op: op, Reason: ReasonTransport, cause: err}
			}
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := bo.Duration()
			if ra := resp.Header.Get("Retry-After"); retryAfterRe.MatchString(ra) {
				if secs, err := strconv.Atoi(ra); err == nil {
					delay = time.Duration(secs) * time.Second
				}
			}
			lastErr = fmt.Errorf("http %d", resp.StatusCode)
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, &CallError{Op: op, Reason: ReasonTransport, cause: err}
			}
			continue
		}
		return body, nil
	}
	return nil, &CallError{Op: op, Reason: ReasonTransport, cause: lastErr}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) getBatch(ctx context.Context, op string, paths []string, signLiteral, accept string) ([]json.RawMessage, error) {
	url := c.base + "/" + strings.Join(paths, ",") + "?batch=1"
	body, err := c.do(ctx, op, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		c.headers(req, signString(signLiteral), accept, false)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	return parseFrames(body), nil
}

// post wraps payload into the batch envelope {"0":{"json":...}} and signs the
// inner payload unless signLiteral overrides it.
func (c *Client) post(ctx context.Context, op, path string, payload any, signLiteral, accept string) ([]json.RawMessage, error) {
	envelope := map[string]any{"0": map[string]any{"json": payload}}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, &CallError{Op: op, Reason: ReasonTransport, cause: err}
	}
	var sig signature
	if signLiteral != "" {
		sig = signString(signLiteral)
	} else {
		sig = signPayload(payload)
	}
	url := c.base + "/" + path + "?batch=1"
	body, err := c.do(ctx, op, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		c.headers(req, sig, accept, true)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	return parseFrames(body), nil
}

// mutate posts and converts any embedded server error into a classified
// CallError.
func (c *Client) mutate(ctx context.Context, op, path string, payload any) error {
	frames, err := c.post(ctx, op, path, payload, "", jsonlAccept)
	if err != nil {
		return err
	}
	if msg, found := findErrorMessage(frames); found {
		return &CallError{Op: op, Msg: msg, Reason: classifyMessage(msg)}
	}
	return nil
}

// GetState fetches the account snapshot, walking a fallback ladder of route
// and signing variants the server has accepted across versions.
func (c *Client) GetState(ctx context.Context) (*game.AccountState, error) {
	const op = "getState"
	type attempt func() ([]json.RawMessage, error)
	attempts := []attempt{
		func() ([]json.RawMessage, error) {
			return c.getBatch(ctx, op, []string{"auth.me", "core.getState"}, "undefined", jsonlAccept)
		},
		func() ([]json.RawMessage, error) {
			return c.getBatch(ctx, op, []string{"auth.me", "core.getState"}, "{}", jsonlAccept)
		},
		func() ([]json.RawMessage, error) {
			return c.getBatch(ctx, op, []string{"core.getState"}, "undefined", jsonlAccept)
		},
		func() ([]json.RawMessage, error) {
			return c.getBatch(ctx, op, []string{"auth.me", "core.getState"}, "undefined", jsonAccept)
		},
		func() ([]json.RawMessage, error) {
			return c.post(ctx, op, "core.getState", nil, "null", jsonAccept)
		},
	}
	var lastErr error
	for _, try := range attempts {
		frames, err := try()
		if err != nil {
			lastErr = err
			continue
		}
		if st, ok := findState(frames); ok {
			return st, nil
		}
	}
	return nil, &CallError{Op: op, Reason: ReasonNoState, cause: lastErr}
}

// HarvestMany harvests the given slots in one batched call. An empty set is a
// success without a network round trip.
func (c *Client) HarvestMany(ctx context.Context, slotIndexes []int) error {
	if len(slotIndexes) == 0 {
		return nil
	}
	return c.mutate(ctx, "harvest", "core.harvest", map[string]any{"slotIndexes": slotIndexes})
}

func (c *Client) PlantMany(ctx context.Context, plantings []game.Planting) error {
	if len(plantings) == 0 {
		return nil
	}
	return c.mutate(ctx, "plant", "core.plantSeed", map[string]any{"plantings": plantings})
}

func (c *Client) BuySeeds(ctx context.Context, seedKey string, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return c.buyItem(ctx, "buySeeds", seedKey, "SEED", quantity)
}

func (c *Client) BuyModifier(ctx context.Context, modifierKey string, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return c.buyItem(ctx, "buyModifier", modifierKey, "MODIFIER", quantity)
}

func (c *Client) buyItem(ctx context.Context, op, key, itemType string, quantity int) error {
	payload := map[string]any{
		"purchases": []map[string]any{{"key": key, "type": itemType, "quantity": quantity}},
	}
	return c.mutate(ctx, op, "core.buyItem", payload)
}

func (c *Client) ApplyModifier(ctx context.Context, applications []game.ModifierApplication) error {
	if len(applications) == 0 {
		return nil
	}
	return c.mutate(ctx, "applyModifier", "core.applyModifier", map[string]any{"applications": applications})
}

func (c *Client) BuyPlot(ctx context.Context) error {
	return c.mutate(ctx, "buyPlot", "core.buyPlot", map[string]any{"count": 1})
}

// Prestige performs the reset. Route has moved over time; newest name first.
func (c *Client) Prestige(ctx context.Context) error {
	const op = "prestige"
	routes := []string{"prestige.performReset", "core.prestige", "core.resetPrestige"}
	var lastErr error
	for _, route := range routes {
		frames, err := c.post(ctx, op, route, nil, "null", jsonAccept)
		if err != nil {
			lastErr = err
			continue
		}
		if msg, found := findErrorMessage(frames); found {
			lastErr = &CallError{Op: op, Msg: msg, Reason: classifyMessage(msg)}
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = &CallError{Op: op, Reason: ReasonUnknown}
	}
	return lastErr
}

// ClaimBasePlot walks the candidate claim routes until one succeeds. A fresh
// or freshly reset account has zero plots and the first one is a free claim,
// not a purchase; the exact route differs per server version, ending with
// buyPlot(null) for servers that model the base plot as a zero-cost buy.
// Callers must verify the effect via GetState; a non-error response only
// means the server did not object.
func (c *Client) ClaimBasePlot(ctx context.Context) error {
	const op = "claimBasePlot"
	type candidate struct {
		route    string
		payloads []any
	}
	candidates := []candidate{
		{"prestige.claimRewards", []any{map[string]any{}, map[string]any{"reward": "plot"}, map[string]any{"rewards": []string{"plot"}}}},
		{"prestige.claimReward", []any{map[string]any{}, map[string]any{"reward": "plot"}}},
		{"core.claimReward", []any{map[string]any{}, map[string]any{"reward": "plot"}}},
		{"rewards.claim", []any{map[string]any{}, map[string]any{"reward": "plot"}, map[string]any{"rewards": []string{"plot"}}}},
		{"core.claimBasePlot", []any{map[string]any{}}},
		{"core.claimStarterPlot", []any{map[string]any{}}},
		{"core.claimPlot", []any{map[string]any{}}},
		{"core.initializePlot", []any{map[string]any{}}},
		{"core.initPlot", []any{map[string]any{}}},
		{"core.freePlot", []any{map[string]any{}}},
		{"core.buyPlot", []any{nil}},
	}
	var lastErr error
	for _, cand := range candidates {
		for _, payload := range cand.payloads {
			signLiteral := ""
			if payload == nil {
				signLiteral = "null"
			}
			frames, err := c.post(ctx, op, cand.route, payload, signLiteral, jsonlAccept)
			if err != nil {
				lastErr = err
				continue
			}
			if msg, found := findErrorMessage(frames); found {
				lastErr = &CallError{Op: op, Msg: msg, Reason: classifyMessage(msg)}
				continue
			}
			return nil
		}
	}
	if lastErr == nil {
		lastErr = &CallError{Op: op, Reason: ReasonUnknown}
	}
	return lastErr
}

// RedactCookie masks session tokens for anything that gets logged.
func RedactCookie(cookie string) string {
	out := regexp.MustCompile(`session-token=[^;]+`).ReplaceAllString(cookie, "session-token=***")
	out = regexp.MustCompile(`__Host-authjs\.csrf-token=[^;]+`).ReplaceAllString(out, "__Host-authjs.csrf-token=***")
	return out
}
