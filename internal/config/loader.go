package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config captures environment driven configuration values for the
// appointment scheduler service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	GridStartHour   int
	GridEndHour     int
	GridSlotMinutes int
	RateLimitRPS    float64
	RateLimitBurst  int
}

// Load parses configuration values from the current process environment.
//
// Every field has a sensible default; set values are validated and
// rejected with the offending variable names collected into one error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:scheduler.db?_pragma=foreign_keys(1)",
		GridStartHour:   7,
		GridEndHour:     19,
		GridSlotMinutes: 30,
		RateLimitRPS:    10,
		RateLimitBurst:  20,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("SCHEDULER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SCHEDULER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SCHEDULER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if startValue := strings.TrimSpace(os.Getenv("SCHEDULER_GRID_START_HOUR")); startValue != "" {
		start, err := strconv.Atoi(startValue)
		if err != nil || start < 0 || start > 23 {
			invalid = append(invalid, "SCHEDULER_GRID_START_HOUR")
		} else {
			cfg.GridStartHour = start
		}
	}

	if endValue := strings.TrimSpace(os.Getenv("SCHEDULER_GRID_END_HOUR")); endValue != "" {
		end, err := strconv.Atoi(endValue)
		if err != nil || end < 1 || end > 24 {
			invalid = append(invalid, "SCHEDULER_GRID_END_HOUR")
		} else {
			cfg.GridEndHour = end
		}
	}

	if slotValue := strings.TrimSpace(os.Getenv("SCHEDULER_GRID_SLOT_MINUTES")); slotValue != "" {
		slot, err := strconv.Atoi(slotValue)
		if err != nil || slot <= 0 || slot > 60 {
			invalid = append(invalid, "SCHEDULER_GRID_SLOT_MINUTES")
		} else {
			cfg.GridSlotMinutes = slot
		}
	}

	if rpsValue := strings.TrimSpace(os.Getenv("SCHEDULER_RATE_LIMIT_RPS")); rpsValue != "" {
		rps, err := strconv.ParseFloat(rpsValue, 64)
		if err != nil || rps <= 0 {
			invalid = append(invalid, "SCHEDULER_RATE_LIMIT_RPS")
		} else {
			cfg.RateLimitRPS = rps
		}
	}

	if burstValue := strings.TrimSpace(os.Getenv("SCHEDULER_RATE_LIMIT_BURST")); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "SCHEDULER_RATE_LIMIT_BURST")
		} else {
			cfg.RateLimitBurst = burst
		}
	}

	if cfg.GridStartHour >= cfg.GridEndHour {
		invalid = append(invalid, "SCHEDULER_GRID_START_HOUR")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
