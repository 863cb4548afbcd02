package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

// neuralMaxChunkLen is the request-size ceiling the synthesis service
// enforces per call.
const neuralMaxChunkLen = 3000

type NeuralConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	MaxRetries     int
	BaseDelay      time.Duration
	ProxyURL       string // optional SOCKS5 proxy, host:port
}

func DefaultNeuralConfig() NeuralConfig {
	return NeuralConfig{
		Model:          "neural-multilingual-v1",
		RequestTimeout: 60 * time.Second,
		MaxRetries:     3,
		BaseDelay:      500 * time.Millisecond,
	}
}

type synthesisRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Model string `json:"model"`
}

// NeuralClient talks to the networked neural-voice service. Transient
// failures are retried with backoff; the service has no speed
// parameter, so the speed transform is left to the output sink.
type NeuralClient struct {
	cfg        NeuralConfig
	httpClient *http.Client
	logger     *zap.Logger
	sleep      sleepFunc
}

func NewNeuralClient(cfg NeuralConfig, logger *zap.Logger) (*NeuralClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("neural backend requires a service URL")
	}

	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		dialer, err := proxy.SOCKS5("tcp", cfg.ProxyURL, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("neural proxy dialer: %w", err)
		}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}

	return &NeuralClient{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		logger: logger,
		sleep:  sleepContext,
	}, nil
}

func (c *NeuralClient) Name() string      { return "neural" }
func (c *NeuralClient) MaxChunkLen() int  { return neuralMaxChunkLen }
func (c *NeuralClient) NativeSpeed() bool { return false }

func (c *NeuralClient) Synthesize(ctx context.Context, text, voice string, _ float64) (Audio, error) {
	bo := backoff{maxRetries: c.cfg.MaxRetries, baseDelay: c.cfg.BaseDelay}
	attempts := 0

	for {
		attempts++
		data, retryable, err := c.call(ctx, text, voice)
		if err == nil {
			return Audio{Data: data, Format: "mp3"}, nil
		}
		if ctx.Err() != nil {
			return Audio{}, ctx.Err()
		}
		if !retryable {
			return Audio{}, fmt.Errorf("neural synthesis: %w: %w", ErrSynthesisUnavailable, err)
		}

		delay, ok := bo.next()
		if !ok {
			return Audio{}, fmt.Errorf("neural synthesis after %d attempts: %w: %w",
				attempts, ErrSynthesisUnavailable, err)
		}

		c.logger.Warn("transient synthesis failure, retrying",
			zap.Int("attempt", attempts),
			zap.Duration("delay", delay),
			zap.Error(err))

		if err := c.sleep(ctx, delay); err != nil {
			return Audio{}, err
		}
	}
}

// call performs one synthesis request. The second return reports
// whether the failure is transient: network errors, timeouts, 408/429
// and server errors are; other HTTP failures are not.
func (c *NeuralClient) call(ctx context.Context, text, voice string) ([]byte, bool, error) {
	payload, err := json.Marshal(synthesisRequest{Text: text, Voice: voice, Model: c.cfg.Model})
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/synthesize", bytes.NewBuffer(payload))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retryable := resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("synthesis service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}
	if len(data) == 0 {
		return nil, false, fmt.Errorf("synthesis service returned no audio")
	}
	return data, false, nil
}
