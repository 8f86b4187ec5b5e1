package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
)

type Workbook struct {
    Path  string `json:"path"`
    Sheet string `json:"sheet"`
}

type Coindesk struct {
    Endpoint          string `json:"endpoint"`
    UserAgent         string `json:"user_agent"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Config struct {
    Workbook Workbook `json:"workbook"`
    Coindesk Coindesk `json:"coindesk"`
    // Locale picks the separator convention used to parse the quoted
    // price string (e.g. "en_US", "de_DE"). Empty means: derive from
    // LC_NUMERIC/LC_ALL/LANG, falling back to en_US.
    Locale string `json:"locale"`
}

func Default() Config {
    return Config{
        Workbook: Workbook{
            Path:  "btcprices.xlsx",
            Sheet: "Bitcoin Prices",
        },
        Coindesk: Coindesk{
            Endpoint:          "https://api.coindesk.com/v1/bpi/currentprice.json",
            UserAgent:         "btctracker/1.0",
            RequestTimeoutSec: 15,
        },
    }
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("BTC_WORKBOOK"); v != "" { cfg.Workbook.Path = v }
    if v := os.Getenv("BTC_SHEET"); v != "" { cfg.Workbook.Sheet = v }
    if v := os.Getenv("COINDESK_ENDPOINT"); v != "" { cfg.Coindesk.Endpoint = v }
    if v := os.Getenv("COINDESK_USER_AGENT"); v != "" { cfg.Coindesk.UserAgent = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Coindesk.RequestTimeoutSec = x }
    }
    if v := os.Getenv("BTC_LOCALE"); v != "" { cfg.Locale = v }
}
