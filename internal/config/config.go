package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/paycal/internal/common"
	"github.com/spf13/viper"
)

// Viper keys and their defaults.
const (
	KeyDatabasePath     = "database.path"
	KeyTimezone         = "calendar.timezone"
	KeyPaydayLenient    = "payday.lenient"
	DefaultDatabasePath = "$HOME/.local/share/paycal/paycal.db"
)

// Config is the resolved runtime configuration.
type Config struct {
	Location      *time.Location
	DatabasePath  string
	PaydayLenient bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyTimezone, "")
	v.SetDefault(KeyPaydayLenient, true)
}

// Load resolves configuration from v. It follows this precedence:
// 1. Config file or PAYCAL_ env vars, as already loaded into v
// 2. Defaults from SetDefaults
func Load(v *viper.Viper) (*Config, error) {
	dbPath := v.GetString(KeyDatabasePath)
	if dbPath == "" {
		dbPath = DefaultDatabasePath
	}

	loc, err := Location(v.GetString(KeyTimezone))
	if err != nil {
		return nil, err
	}

	lenient := true
	if v.IsSet(KeyPaydayLenient) {
		lenient = v.GetBool(KeyPaydayLenient)
	}

	return &Config{
		DatabasePath:  ExpandPath(dbPath),
		Location:      loc,
		PaydayLenient: lenient,
	}, nil
}

// Location resolves an IANA timezone name. Empty means the process-local
// zone.
func Location(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: calendar.timezone %q: %v", common.ErrInvalidConfig, name, err)
	}
	return loc, nil
}
