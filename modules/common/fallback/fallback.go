package fallback

import (
	"encoding/json"
	"strconv"
	"strings"

	"stylelab-server/modules/common/model"
)

var supportedAspectRatios = map[string]bool{
	"1:1":  true,
	"16:9": true,
	"9:16": true,
	"4:3":  true,
	"3:4":  true,
}

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value interface{}, fallback string) string {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return fallback
}

// SafeInt converts common number shapes into a non-negative int with a fallback.
func SafeInt(value interface{}, fallback int) int {
	switch v := value.(type) {
	case float64:
		if v >= 0 {
			return int(v)
		}
	case int:
		if v >= 0 {
			return v
		}
	case int64:
		if v >= 0 {
			return int(v)
		}
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil && n >= 0 {
			return n
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

// SafeAspectRatio keeps supported ratios and maps everything else to 1:1.
func SafeAspectRatio(value interface{}) string {
	ratio := SafeString(value, model.DefaultAspectRatio)
	if !IsSupportedAspectRatio(ratio) {
		return model.DefaultAspectRatio
	}
	return ratio
}

// IsSupportedAspectRatio reports membership in the fixed ratio set.
func IsSupportedAspectRatio(ratio string) bool {
	return supportedAspectRatios[ratio]
}
