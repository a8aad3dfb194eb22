package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Profile     string
	Token       string
	Floor       time.Duration
	Duration    time.Duration
	RPS         int
	Concurrency int
}

type Result struct {
	TotalRequests   int64
	Failures        int64
	Status2xx       int64
	Status4xx       int64
	Status5xx       int64
	FloorViolations int64
	MinLatency      time.Duration
	MaxLatency      time.Duration
}

// probe is one request shape. None of them mutate state or consume a
// rate-limit quota on the server.
type probe struct {
	method string
	path   string
	body   string
	auth   bool
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Floor < 0 {
		cfg.Floor = 0
	}

	probes := probesForProfile(cfg.Profile)
	if len(probes) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}
	for _, p := range probes {
		if p.auth && cfg.Token == "" {
			return Result{}, fmt.Errorf("profile %s requires --token", cfg.Profile)
		}
	}

	client := &http.Client{Timeout: 5 * time.Second}
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx, violations int64
	var latMu sync.Mutex
	var minLat, maxLat time.Duration
	jobs := make(chan probe, cfg.Concurrency*2)
	wg := sync.WaitGroup{}

	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				req, err := http.NewRequestWithContext(ctx, p.method, cfg.BaseURL+p.path, strings.NewReader(p.body))
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				if p.body != "" {
					req.Header.Set("Content-Type", "application/json")
				}
				if p.auth {
					req.Header.Set("Authorization", "Bearer "+cfg.Token)
				}
				start := time.Now()
				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				_ = resp.Body.Close()
				elapsed := time.Since(start)

				atomic.AddInt64(&total, 1)
				if p.method != http.MethodOptions && elapsed < cfg.Floor {
					atomic.AddInt64(&violations, 1)
				}
				latMu.Lock()
				if minLat == 0 || elapsed < minLat {
					minLat = elapsed
				}
				if elapsed > maxLat {
					maxLat = elapsed
				}
				latMu.Unlock()
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&s2xx, 1)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					atomic.AddInt64(&s4xx, 1)
				case resp.StatusCode >= 500:
					atomic.AddInt64(&s5xx, 1)
				}
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Result{
				TotalRequests:   total,
				Failures:        failures,
				Status2xx:       s2xx,
				Status4xx:       s4xx,
				Status5xx:       s5xx,
				FloorViolations: violations,
				MinLatency:      minLat,
				MaxLatency:      maxLat,
			}, nil
		case <-ticker.C:
			select {
			case jobs <- probes[i%len(probes)]:
				i++
			case <-ctx.Done():
			}
		}
	}
}

func probesForProfile(profile string) []probe {
	unauthenticated := []probe{
		{method: http.MethodPost, path: "/api/v1/delete-user", body: `{}`},
		{method: http.MethodPost, path: "/api/v1/send-welcome-email", body: `{}`},
		{method: http.MethodGet, path: "/api/v1/admin/books"},
	}
	invalid := []probe{
		{method: http.MethodPost, path: "/api/v1/send-book-status-email", body: `{}`},
		{method: http.MethodPost, path: "/api/v1/hooks/send-auth-email", body: `{}`},
		{method: http.MethodPost, path: "/api/v1/delete-user", body: `not json`},
	}
	switch strings.ToLower(profile) {
	case "", "mixed":
		return append(append([]probe{}, unauthenticated...), invalid...)
	case "unauthenticated":
		return unauthenticated
	case "invalid-input":
		return invalid
	case "authenticated":
		return []probe{
			{method: http.MethodPost, path: "/api/v1/send-welcome-email", body: `{"email":"probe@invalid.example"}`, auth: true},
			{method: http.MethodGet, path: "/api/v1/admin/books?page_size=1", auth: true},
		}
	case "preflight":
		return []probe{
			{method: http.MethodOptions, path: "/api/v1/delete-user"},
			{method: http.MethodOptions, path: "/api/v1/send-welcome-email"},
		}
	default:
		return nil
	}
}
