package redis

import (
	"context"
	"strings"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"
	"github.com/redis/go-redis/v9"
)

// Client backs the per-endpoint rate limit counters. It stays nil when Redis
// is not configured or unreachable; the API then runs without rate limiting.
var (
	Client redis.UniversalClient
	ctx    = context.Background()
)

// Config mirrors the REDIS section of config.yml. A single ADDRESS gives a
// plain client, a comma-separated ADDRESSES list gives a cluster client, and
// setting MASTER_NAME switches to sentinel failover mode.
type Config struct {
	Addresses        []string
	Password         string
	DB               int
	MaxRetries       int
	DialTimeout      time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	PoolSize         int
	MinIdleConns     int
	RouteByLatency   bool
	RouteRandomly    bool
	MasterName       string
	SentinelPassword string
}

// Initialize connects the universal client. A missing or unreachable Redis is
// not an error: the planner API degrades to unlimited request rates.
func Initialize() error {
	config := configFromSettings()

	if len(config.Addresses) == 0 {
		log.Info("Redis not configured; request rate limiting disabled")
		return nil
	}

	Client = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:            config.Addresses,
		Password:         config.Password,
		DB:               config.DB,
		MaxRetries:       config.MaxRetries,
		DialTimeout:      config.DialTimeout,
		ReadTimeout:      config.ReadTimeout,
		WriteTimeout:     config.WriteTimeout,
		PoolSize:         config.PoolSize,
		MinIdleConns:     config.MinIdleConns,
		RouteByLatency:   config.RouteByLatency,
		RouteRandomly:    config.RouteRandomly,
		MasterName:       config.MasterName,
		SentinelPassword: config.SentinelPassword,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(pingCtx).Err(); err != nil {
		log.Warning("Redis unreachable (%v); request rate limiting disabled", err)
		Client = nil
		return nil
	}

	switch {
	case config.MasterName != "":
		log.Info("Redis connected via sentinel (master %s)", config.MasterName)
	case len(config.Addresses) > 1:
		log.Info("Redis cluster connected (%d nodes)", len(config.Addresses))
	default:
		log.Info("Redis connected (%s)", config.Addresses[0])
	}

	return nil
}

func configFromSettings() Config {
	config := Config{
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	}

	config.Addresses = splitAddresses(settings.Get("REDIS.ADDRESSES").String())
	if len(config.Addresses) == 0 {
		config.Addresses = splitAddresses(settings.Get("REDIS.ADDRESS").String())
	}

	config.Password = settings.Get("REDIS.PASSWORD").String()
	config.DB = settings.Get("REDIS.DB").Int()

	if poolSize := settings.Get("REDIS.POOL_SIZE").Int(); poolSize > 0 {
		config.PoolSize = poolSize
	}
	if minIdle := settings.Get("REDIS.MIN_IDLE_CONNS").Int(); minIdle > 0 {
		config.MinIdleConns = minIdle
	}
	if maxRetries := settings.Get("REDIS.MAX_RETRIES").Int(); maxRetries > 0 {
		config.MaxRetries = maxRetries
	}

	config.RouteByLatency = settings.Get("REDIS.ROUTE_BY_LATENCY").Bool()
	config.RouteRandomly = settings.Get("REDIS.ROUTE_RANDOMLY").Bool()
	config.MasterName = settings.Get("REDIS.MASTER_NAME").String()
	config.SentinelPassword = settings.Get("REDIS.SENTINEL_PASSWORD").String()

	return config
}

// splitAddresses parses a comma-separated host:port list, dropping blanks.
func splitAddresses(raw string) []string {
	var addresses []string
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addresses = append(addresses, addr)
		}
	}
	return addresses
}

// IsAvailable reports whether the client is connected and responsive.
func IsAvailable() bool {
	if Client == nil {
		return false
	}
	return Client.Ping(ctx).Err() == nil
}

// Close releases the connection pool.
func Close() error {
	if Client != nil {
		return Client.Close()
	}
	return nil
}
