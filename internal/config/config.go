package config

import (
	"os"
	"strconv"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	// CODShippingFee is the flat surcharge applied to cash-on-delivery orders.
	CODShippingFee float64
}

// Load reads configuration from environment variables.
func Load() Config {
	addr := os.Getenv("STOREFRONT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	fee := 5.00
	if v := os.Getenv("COD_SHIPPING_FEE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			fee = parsed
		}
	}

	return Config{
		Addr:           addr,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CODShippingFee: fee,
	}
}
