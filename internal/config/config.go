package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
)

// Config is the full service configuration. Loaded once at startup and
// validated fail-fast; the engine never reads ambient globals.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Stores     StoresConfig    `yaml:"stores"`
	Feed       FeedConfig      `yaml:"feed"`
	Candidates CandidateConfig `yaml:"candidates"`
	Scoring    ScoringConfig   `yaml:"scoring"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type StoresConfig struct {
	PostgresDSN    string        `yaml:"postgres_dsn"`
	RedisAddr      string        `yaml:"redis_addr"`
	DocCacheTTL    time.Duration `yaml:"doc_cache_ttl"`
	VectorCacheTTL time.Duration `yaml:"vector_cache_ttl"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breakers wrapped around the graph and
// vector store adapters.
type BreakerConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
}

type FeedConfig struct {
	DefaultLimit   int           `yaml:"default_limit"`
	MaxLimit       int           `yaml:"max_limit"`
	StreamInterval time.Duration `yaml:"stream_interval"`
}

// CandidateConfig bounds the two discovery sources. Overshoot multiplies the
// requested limit so later filtering has headroom.
type CandidateConfig struct {
	Overshoot     int           `yaml:"overshoot"`
	MaxHops       int           `yaml:"max_hops"`
	MaxFanout     int           `yaml:"max_fanout"`
	SourceTimeout time.Duration `yaml:"source_timeout"`
}

// ScoringConfig holds the relevance model. Weights must sum to 1.0 and the
// per-tier decay rates must be strictly increasing from PLATINUM to STANDARD
// (more impactful news decays slower).
type ScoringConfig struct {
	Weights      Weights            `yaml:"weights"`
	DecayPerTier map[string]float64 `yaml:"decay_per_tier"` // per-hour rates
	HopPenalties []float64          `yaml:"hop_penalties"`  // index = hop distance
	ThemeBonus   float64            `yaml:"theme_bonus"`
}

type Weights struct {
	Semantic float64 `yaml:"semantic"`
	Trust    float64 `yaml:"trust"`
	Recency  float64 `yaml:"recency"`
	Graph    float64 `yaml:"graph"`
}

func (w Weights) Sum() float64 {
	return w.Semantic + w.Trust + w.Recency + w.Graph
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

const weightSumTolerance = 0.001

// Load reads and validates a YAML config file, failing fast on any
// invariant violation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Default returns a runnable configuration. Weight values are tuning
// defaults, not contractual constants.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Stores: StoresConfig{
			DocCacheTTL:    15 * time.Minute,
			VectorCacheTTL: 30 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:         3,
				Interval:            60 * time.Second,
				Timeout:             30 * time.Second,
				ConsecutiveFailures: 5,
			},
		},
		Feed: FeedConfig{
			DefaultLimit:   20,
			MaxLimit:       100,
			StreamInterval: 30 * time.Second,
		},
		Candidates: CandidateConfig{
			Overshoot:     4,
			MaxHops:       2,
			MaxFanout:     25,
			SourceTimeout: 2 * time.Second,
		},
		Scoring: ScoringConfig{
			Weights: Weights{
				Semantic: 0.35,
				Trust:    0.15,
				Recency:  0.20,
				Graph:    0.30,
			},
			DecayPerTier: map[string]float64{
				string(domain.TierPlatinum): 0.005,
				string(domain.TierGold):     0.010,
				string(domain.TierSilver):   0.020,
				string(domain.TierBronze):   0.040,
				string(domain.TierStandard): 0.080,
			},
			HopPenalties: []float64{1.0, 0.6, 0.3},
			ThemeBonus:   0.10,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// Validate checks every load-time invariant. Called by Load; exposed so the
// validate-config command and tests can run it against arbitrary configs.
func (c *Config) Validate() error {
	if sum := c.Scoring.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("scoring weights sum to %.3f, expected 1.000", sum)
	}
	for _, w := range []struct {
		name string
		val  float64
	}{
		{"semantic", c.Scoring.Weights.Semantic},
		{"trust", c.Scoring.Weights.Trust},
		{"recency", c.Scoring.Weights.Recency},
		{"graph", c.Scoring.Weights.Graph},
	} {
		if w.val < 0 || w.val > 1 {
			return fmt.Errorf("weight %s is %.3f, must be in [0,1]", w.name, w.val)
		}
	}

	if err := c.validateDecay(); err != nil {
		return err
	}

	if len(c.Scoring.HopPenalties) == 0 {
		return fmt.Errorf("hop_penalties must not be empty")
	}
	prev := math.Inf(1)
	for i, p := range c.Scoring.HopPenalties {
		if p <= 0 || p > 1 {
			return fmt.Errorf("hop penalty [%d] is %.3f, must be in (0,1]", i, p)
		}
		if p >= prev {
			return fmt.Errorf("hop penalties must strictly decrease with distance")
		}
		prev = p
	}

	if c.Scoring.ThemeBonus < 0 || c.Scoring.ThemeBonus > 1 {
		return fmt.Errorf("theme_bonus is %.3f, must be in [0,1]", c.Scoring.ThemeBonus)
	}

	if c.Candidates.Overshoot < 1 || c.Candidates.Overshoot > 10 {
		return fmt.Errorf("candidate overshoot is %d, must be in [1,10]", c.Candidates.Overshoot)
	}
	if c.Candidates.MaxHops < 0 || c.Candidates.MaxHops > 3 {
		return fmt.Errorf("max_hops is %d, must be in [0,3]", c.Candidates.MaxHops)
	}
	if c.Candidates.MaxFanout < 1 {
		return fmt.Errorf("max_fanout must be positive")
	}

	if c.Feed.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive")
	}
	if c.Feed.MaxLimit < c.Feed.DefaultLimit {
		return fmt.Errorf("max_limit %d is below default_limit %d", c.Feed.MaxLimit, c.Feed.DefaultLimit)
	}

	return nil
}

// validateDecay enforces the monotonic decay invariant: each tier's decay
// rate must be strictly greater than the tier above it.
func (c *Config) validateDecay() error {
	rates := make([]float64, len(domain.Tiers))
	for i, tier := range domain.Tiers {
		rate, ok := c.Scoring.DecayPerTier[string(tier)]
		if !ok {
			return fmt.Errorf("decay_per_tier missing tier %s", tier)
		}
		if rate < 0 {
			return fmt.Errorf("decay rate for %s is negative", tier)
		}
		rates[i] = rate
	}
	for i := 1; i < len(rates); i++ {
		if rates[i] <= rates[i-1] {
			return fmt.Errorf("decay rate for %s (%.4f) must exceed %s (%.4f)",
				domain.Tiers[i], rates[i], domain.Tiers[i-1], rates[i-1])
		}
	}
	return nil
}

// DecayRate returns the decay rate for a tier. Unknown tiers fall back to
// the STANDARD bucket.
func (c *ScoringConfig) DecayRate(tier domain.ImpactTier) float64 {
	if rate, ok := c.DecayPerTier[string(tier)]; ok {
		return rate
	}
	return c.DecayPerTier[string(domain.TierStandard)]
}

// HopPenalty returns the graph-score multiplier for a hop distance. Distances
// past the configured table score zero.
func (c *ScoringConfig) HopPenalty(hops int) float64 {
	if hops < 0 || hops >= len(c.HopPenalties) {
		return 0
	}
	return c.HopPenalties[hops]
}
