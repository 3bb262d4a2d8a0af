package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

func getString(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func getInt(v *viper.Viper, key string) int {
	return v.GetInt(key)
}

func getBool(v *viper.Viper, key string) bool {
	return v.GetBool(key)
}

// getDuration accepts Go durations ("30s") and bare seconds ("30").
func getDuration(v *viper.Viper, key string) time.Duration {
	raw := getString(v, key)
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n := v.GetInt(key); n > 0 {
		return time.Duration(n) * time.Second
	}
	return 0
}

func getList(v *viper.Viper, key string) []string {
	raw := getString(v, key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
