package viewer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sse"
	"go.uber.org/zap"

	"github.com/DoyleJ11/cricket-auction-backend/internal/broadcast"
	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

var ErrStreamRejected = errors.New("snapshot stream rejected")

// Client reads the SSE snapshot stream of one auction.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: http.DefaultClient, Log: log}
}

// Stream calls fn with the payload of every event until ctx is cancelled,
// the server closes the stream, or fn returns an error.
func (c *Client) Stream(ctx context.Context, tournamentID, auctionID string, fn func(*models.Auction) error) error {
	q := url.Values{"tournamentId": {tournamentID}, "auctionId": {auctionID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/auction/sse?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("%w: %s: %s", ErrStreamRejected, resp.Status, bytes.TrimSpace(body))
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	var block bytes.Buffer
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) > 0 {
			block.Write(line)
			block.WriteByte('\n')
			continue
		}
		// blank line ends an event
		if block.Len() == 0 {
			continue
		}
		if err := c.dispatch(block.Bytes(), fn); err != nil {
			return err
		}
		block.Reset()
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}

func (c *Client) dispatch(block []byte, fn func(*models.Auction) error) error {
	events, err := sse.Decode(bytes.NewReader(block))
	if err != nil {
		return err
	}
	for _, ev := range events {
		data, _ := ev.Data.(string)
		if strings.TrimSpace(data) == "" {
			continue
		}
		var snap broadcast.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			c.Log.Warn("skipping malformed snapshot", zap.Error(err))
			continue
		}
		if err := fn(snap.Payload); err != nil {
			return err
		}
	}
	return nil
}

// Follow streams snapshots into r and calls onChange for every one that
// changed local state.
func (c *Client) Follow(ctx context.Context, tournamentID, auctionID string, r *Reconciler, onChange func(Outcome, State)) error {
	return c.Stream(ctx, tournamentID, auctionID, func(a *models.Auction) error {
		if out := r.Apply(a); out != OutcomeNoop {
			onChange(out, r.State())
		}
		return nil
	})
}
