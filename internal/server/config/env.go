package config

import (
	"log"
	"reflect"

	"github.com/caarlos0/env/v6"
	"github.com/shopspring/decimal"
)

var envParsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(decimal.Decimal{}): func(v string) (interface{}, error) {
		return decimal.NewFromString(v)
	},
}

// parseEnv overlays PERMAVAULT_* variables. Unset variables leave the
// current value alone.
func parseEnv(cfg *Config, opts ...env.Options) {
	if err := env.ParseWithFuncs(cfg, envParsers, opts...); err != nil {
		log.Panicf("config parsing failed: %+v", err)
	}
}
