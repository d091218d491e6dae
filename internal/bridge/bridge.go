// Package bridge keeps a companion process's task list in step with ours.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hray3182/diditakeit/internal/models"
)

var ErrDisconnected = errors.New("bridge: peer not connected")

type State int32

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// TaskSource supplies the list pushed to the peer.
type TaskSource interface {
	List(ctx context.Context) ([]models.Task, error)
}

// SyncGuard is the process-wide "currently syncing" flag.
type SyncGuard interface {
	BeginSync() bool
	EndSync()
}

type Config struct {
	PeerURL       string
	Tasks         TaskSource
	Guard         SyncGuard
	PushInterval  time.Duration
	RetryInterval time.Duration
	Timeout       time.Duration
	HTTPClient    *http.Client
}

type Client struct {
	peerURL       string
	tasks         TaskSource
	guard         SyncGuard
	pushInterval  time.Duration
	retryInterval time.Duration
	http          *http.Client

	state atomic.Int32
}

func New(cfg Config) *Client {
	if cfg.PushInterval <= 0 {
		cfg.PushInterval = 30 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		peerURL:       strings.TrimRight(cfg.PeerURL, "/"),
		tasks:         cfg.Tasks,
		guard:         cfg.Guard,
		pushInterval:  cfg.PushInterval,
		retryInterval: cfg.RetryInterval,
		http:          cfg.HTTPClient,
	}
}

func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	if State(c.state.Swap(int32(s))) != s {
		log.Printf("[Bridge] %s (%s)", s, c.peerURL)
	}
}

// Probe checks the peer's health endpoint and updates the connection state.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.peerURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.setState(Disconnected)
		return fmt.Errorf("bridge health request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.setState(Disconnected)
		return fmt.Errorf("bridge health check returned %d", resp.StatusCode)
	}
	c.setState(Connected)
	return nil
}

// Push sends the full local list to the peer. It is skipped while another
// sync holds the guard.
func (c *Client) Push(ctx context.Context) error {
	if c.State() != Connected {
		return ErrDisconnected
	}
	if c.guard != nil {
		if !c.guard.BeginSync() {
			log.Println("[Bridge] Sync in progress, skipping push")
			return nil
		}
		defer c.guard.EndSync()
	}

	list, err := c.tasks.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	body, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.peerURL+"/api/sync/tasks", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.setState(Disconnected)
		return fmt.Errorf("bridge sync request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge sync error (%d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Run probes the peer until it answers, then pushes on every push tick.
// Failures drop back to probing on the retry timer.
func (c *Client) Run(ctx context.Context) {
	log.Printf("[Bridge] Started, peer %s", c.peerURL)

	retryTicker := time.NewTicker(c.retryInterval)
	pushTicker := time.NewTicker(c.pushInterval)
	defer func() {
		retryTicker.Stop()
		pushTicker.Stop()
	}()

	c.connect(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[Bridge] Stopped")
			return
		case <-retryTicker.C:
			if c.State() == Disconnected {
				c.connect(ctx)
			}
		case <-pushTicker.C:
			if c.State() != Connected {
				continue
			}
			if err := c.Push(ctx); err != nil {
				log.Printf("[Bridge] Failed to push tasks: %v", err)
			}
		}
	}
}

func (c *Client) connect(ctx context.Context) {
	if err := c.Probe(ctx); err != nil {
		return
	}
	if err := c.Push(ctx); err != nil {
		log.Printf("[Bridge] Failed to push tasks: %v", err)
	}
}
