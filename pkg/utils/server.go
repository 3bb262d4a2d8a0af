package utils

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"
)

// GetRunnerID returns a stable identifier for this process, used as the owner
// value of cluster locks and in dispatcher logs.
// Logic:
// 1. Return provided override if not empty.
// 2. Use the OS hostname, cleaned to be safe for keys.
// 3. Fall back to a random id.
func GetRunnerID(override string) string {
	if override != "" {
		return override
	}

	hostname, err := os.Hostname()
	if err == nil && hostname != "" && hostname != "localhost" {
		cleanHost := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				return r
			}
			return -1
		}, hostname)
		if cleanHost != "" {
			return "poster-" + cleanHost + "-" + randomSuffix()
		}
	}

	return "poster-" + randomSuffix()
}

func randomSuffix() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
