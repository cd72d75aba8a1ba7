package peer

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/go-resty/resty/v2"
)

// Client talks to the private API of other nodes.
type Client struct {
	client *resty.Client
}

// NewClient constructs a client for talking to peers.
func NewClient(timeout time.Duration) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client: client,
	}
}

// RetrieveStatus asks the peer for its status.
func (c *Client) RetrieveStatus(ctx context.Context, pr Peer) (PeerStatus, error) {
	var status PeerStatus
	if err := c.get(ctx, pr, "/v1/node/status", &status); err != nil {
		return PeerStatus{}, err
	}

	return status, nil
}

// RetrieveChain asks the peer for its full chain of blocks.
func (c *Client) RetrieveChain(ctx context.Context, pr Peer) ([]database.Block, error) {
	var chain []database.Block
	if err := c.get(ctx, pr, "/v1/node/blockchain", &chain); err != nil {
		return nil, err
	}

	return chain, nil
}

// =============================================================================

func (c *Client) get(ctx context.Context, pr Peer, path string, result any) error {
	url := fmt.Sprintf("http://%s%s", pr.Host, path)

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(result).
		Get(url)
	if err != nil {
		return fmt.Errorf("peer %s: %w", pr.Host, err)
	}

	if resp.IsError() {
		return fmt.Errorf("peer %s: %s: status %d: %s", pr.Host, path, resp.StatusCode(), resp.String())
	}

	return nil
}
