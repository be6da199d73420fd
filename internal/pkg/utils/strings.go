package utils

import (
	"encoding/json"
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slugify lower-cases name and replaces every whitespace run with a hyphen.
// "Car Wash" -> "car-wash".
func Slugify(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

// FeaturesToString converts []string to JSON string (safe for DB)
func FeaturesToString(features []string) string {
	if len(features) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(features)
	return string(data)
}

// StringToFeatures converts DB string back to []string
func StringToFeatures(s string) []string {
	if s == "" || s == "[]" {
		return []string{}
	}
	var features []string
	if err := json.Unmarshal([]byte(s), &features); err != nil {
		// Fallback: treat as comma-separated if invalid JSON
		return strings.Split(s, ",")
	}
	return features
}

// MaskPhone keeps the last four digits, for logs.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
