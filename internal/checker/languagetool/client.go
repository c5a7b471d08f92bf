package languagetool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Part is one element of an annotated text. Exactly one of Text or Markup
// is set; InterpretAs tells the server what a markup part stands for.
type Part struct {
	Text        string `json:"text,omitempty"`
	Markup      string `json:"markup,omitempty"`
	InterpretAs string `json:"interpretAs,omitempty"`
}

// Request is one /v2/check call.
type Request struct {
	Language      string
	Annotation    []Part
	DisabledRules []string
}

// Match is one issue reported by the server. Offset and Length count
// UTF-16 code units of the full annotated text, markup included.
type Match struct {
	Message      string        `json:"message"`
	ShortMessage string        `json:"shortMessage"`
	Offset       int           `json:"offset"`
	Length       int           `json:"length"`
	Replacements []Replacement `json:"replacements"`
	Rule         Rule          `json:"rule"`
}

type Replacement struct {
	Value string `json:"value"`
}

type Rule struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Response is the decoded /v2/check answer.
type Response struct {
	Matches []Match `json:"matches"`
}

// Client talks to a LanguageTool server.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// Check posts req to /v2/check.
func (c *Client) Check(ctx context.Context, req Request) (*Response, error) {
	data, err := json.Marshal(struct {
		Annotation []Part `json:"annotation"`
	}{req.Annotation})
	if err != nil {
		return nil, fmt.Errorf("languagetool: encode annotation: %w", err)
	}
	form := url.Values{}
	form.Set("language", req.Language)
	form.Set("data", string(data))
	if len(req.DisabledRules) > 0 {
		form.Set("disabledRules", strings.Join(req.DisabledRules, ","))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("languagetool: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	var out Response
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks that the server answers /v2/languages.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v2/languages", nil)
	if err != nil {
		return fmt.Errorf("languagetool: build request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("languagetool: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("languagetool: %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("languagetool: decode response: %w", err)
	}
	return nil
}
