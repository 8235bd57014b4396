package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
)

// ErrBadPayload marks a feed response that could not be decoded.
var ErrBadPayload = errors.New("bad feed payload")

// #region source
// Source supplies the recent draws. Implementations return them oldest-first.
type Source interface {
	Fetch(ctx context.Context) ([]draw.Observation, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]draw.Observation, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]draw.Observation, error) {
	return f(ctx)
}

// #endregion source

// #region http-source
// HTTPSource polls a JSON endpoint of the form {"data":[{"qihao":..,"sum":..},...]}.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source with its own client and request timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return NewHTTPSourceWithClient(url, &http.Client{Timeout: timeout})
}

// NewHTTPSourceWithClient creates a source using an injected client.
func NewHTTPSourceWithClient(url string, client *http.Client) *HTTPSource {
	return &HTTPSource{url: url, client: client}
}

// Fetch performs one GET and decodes the batch.
func (s *HTTPSource) Fetch(ctx context.Context) ([]draw.Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", s.url, resp.StatusCode)
	}
	return Decode(resp.Body)
}

// #endregion http-source

// #region file-source
// FileSource reads the same JSON document from disk on every fetch.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(_ context.Context) ([]draw.Observation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return Decode(bytes.NewReader(data))
}

// #endregion file-source

// #region decode
type payload struct {
	Data []struct {
		Qihao flexInt `json:"qihao"`
		Sum   flexInt `json:"sum"`
	} `json:"data"`
}

// Decode parses a feed document and returns its draws oldest-first.
func Decode(r io.Reader) ([]draw.Observation, error) {
	var p payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.Data == nil {
		return nil, fmt.Errorf("%w: missing data array", ErrBadPayload)
	}
	batch := make([]draw.Observation, len(p.Data))
	for i, d := range p.Data {
		batch[i] = draw.Observation{Qihao: int64(d.Qihao), Sum: int(d.Sum)}
	}
	return draw.Normalize(batch), nil
}

// flexInt accepts both 12 and "12".
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		return errors.New("null integer")
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = unq
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", string(b))
	}
	*f = flexInt(n)
	return nil
}

// #endregion decode
