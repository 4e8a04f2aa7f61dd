package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string

	RedisURL    string
	CatalogPath string

	AreaMaxRadiusKm float64
	RankHalfLife    time.Duration

	TipMaxLength    int
	KarmaApprove    int
	KarmaReject     int
	KarmaVoteWeight int

	RouteProviders string
	RoutePlatform  string
	RouteOpener    string

	ReindexPoll time.Duration
}

// Load reads .env (if present) and the environment. DATABASE_URL and
// JWT_SECRET are required; malformed numbers fail with the key named.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		RedisURL:             getenv("REDIS_URL", ""),
		CatalogPath:          getenv("CATALOG_PATH", ""),
		RouteProviders:       getenv("ROUTE_PROVIDERS", "uber,ola"),
		RoutePlatform:        getenv("ROUTE_PLATFORM", "android"),
		RouteOpener:          getenv("ROUTE_OPENER", "xdg-open"),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.DatabaseURL, err = requireEnv("DATABASE_URL"); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return Config{}, err
	}

	if cfg.AreaMaxRadiusKm, err = getFloat("AREA_MAX_RADIUS_KM", 25); err != nil {
		return Config{}, err
	}
	if cfg.AreaMaxRadiusKm <= 0 {
		return Config{}, fmt.Errorf("AREA_MAX_RADIUS_KM: must be positive")
	}

	days, err := getFloat("RANK_HALF_LIFE_DAYS", 7)
	if err != nil {
		return Config{}, err
	}
	if days <= 0 {
		return Config{}, fmt.Errorf("RANK_HALF_LIFE_DAYS: must be positive")
	}
	cfg.RankHalfLife = time.Duration(days * float64(24*time.Hour))

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"TIP_MAX_LENGTH", 240, &cfg.TipMaxLength},
		{"KARMA_APPROVE", 10, &cfg.KarmaApprove},
		{"KARMA_REJECT", 2, &cfg.KarmaReject},
		{"KARMA_VOTE_WEIGHT", 1, &cfg.KarmaVoteWeight},
	}
	for _, i := range ints {
		if *i.dst, err = getInt(i.key, i.def); err != nil {
			return Config{}, err
		}
	}
	if cfg.TipMaxLength <= 0 {
		return Config{}, fmt.Errorf("TIP_MAX_LENGTH: must be positive")
	}
	// karma keys are magnitudes; the sign comes from the outcome
	for _, i := range ints[1:] {
		if *i.dst < 0 {
			return Config{}, fmt.Errorf("%s: must not be negative", i.key)
		}
	}

	poll := getenv("REINDEX_POLL", "800ms")
	if cfg.ReindexPoll, err = time.ParseDuration(poll); err != nil {
		return Config{}, fmt.Errorf("REINDEX_POLL: %w", err)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func requireEnv(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("missing env: %s", key)
	}
	return v, nil
}

func getInt(key string, def int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
