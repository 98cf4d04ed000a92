package main

import (
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// ReliableSourceBonus is added to the base credibility score when the
// content's source matches the reliable allow-list.
const ReliableSourceBonus = 30

// baseCredibilityScore is the neutral starting point for source credibility
const baseCredibilityScore = 50

// defaultReliableSources is the allow-list of publishers treated as verified
var defaultReliableSources = []string{
	"reuters.com", "bbc.com", "ap.org", "npr.org",
	"pib.gov.in", "who.int", "cdc.gov",
}

// defaultSourceTrust maps publisher domains to trust weights
var defaultSourceTrust = map[string]int{
	"reuters.com":     95,
	"bbc.com":         92,
	"ap.org":          94,
	"npr.org":         88,
	"pib.gov.in":      90,
	"who.int":         96,
	"cdc.gov":         94,
	"cnn.com":         75,
	"foxnews.com":     70,
	"theguardian.com": 85,
	"nytimes.com":     88,
}

// defaultUnknownSourceTrust is assigned to sources not in the table
const defaultUnknownSourceTrust = 60

// SourceTable is the static publisher credibility lookup. It is loaded once
// at startup and read-only afterwards.
type SourceTable struct {
	reliable []string
	trust    map[string]int
}

// sourceFile is the YAML shape of an external source table
type sourceFile struct {
	Reliable []string `yaml:"reliable"`
	Trust    []struct {
		Domain string `yaml:"domain"`
		Score  int    `yaml:"score"`
	} `yaml:"trust"`
}

// NewSourceTable builds the table from built-in defaults
func NewSourceTable() *SourceTable {
	trust := make(map[string]int, len(defaultSourceTrust))
	for k, v := range defaultSourceTrust {
		trust[k] = v
	}
	return &SourceTable{
		reliable: append([]string(nil), defaultReliableSources...),
		trust:    trust,
	}
}

// LoadSourceTable reads an optional YAML file and merges it over defaults.
// A missing file yields the built-in table.
func LoadSourceTable(path string) (*SourceTable, error) {
	table := NewSourceTable()

	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return table, nil
	}
	if err != nil {
		return nil, NewError(ErrorTypeInternal, "CONFIG_002", "failed to read source table", err)
	}

	var file sourceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, NewError(ErrorTypeInternal, "CONFIG_002", "failed to parse source table", err)
	}

	if len(file.Reliable) > 0 {
		table.reliable = file.Reliable
	}
	for _, entry := range file.Trust {
		if entry.Domain != "" {
			table.trust[strings.ToLower(entry.Domain)] = entry.Score
		}
	}

	return table, nil
}

// IsReliable reports whether the source name matches the reliable allow-list.
// Matching is a case-insensitive substring check.
func (t *SourceTable) IsReliable(sourceName string) bool {
	if sourceName == "" {
		return false
	}
	lower := strings.ToLower(sourceName)
	for _, domain := range t.reliable {
		if strings.Contains(lower, strings.ToLower(domain)) {
			return true
		}
	}
	return false
}

// matchDomain finds the table entry for a source name. When several entries
// match, the longest key wins and ties break lexicographically, so the
// result never depends on map iteration order.
func (t *SourceTable) matchDomain(sourceName string) (string, bool) {
	lower := strings.ToLower(sourceName)
	var bestDomain, bestKey string
	for domain := range t.trust {
		key := strings.TrimSuffix(domain, ".com")
		if !strings.Contains(lower, key) {
			continue
		}
		if len(key) > len(bestKey) || (len(key) == len(bestKey) && domain < bestDomain) {
			bestDomain, bestKey = domain, key
		}
	}
	return bestDomain, bestDomain != ""
}

// TrustScore returns the trust weight for a source. Unknown sources get the
// default weight. Matching ignores case and the ".com" suffix so that
// "Reuters" still hits "reuters.com".
func (t *SourceTable) TrustScore(sourceName string) int {
	if domain, ok := t.matchDomain(sourceName); ok {
		return t.trust[domain]
	}
	return defaultUnknownSourceTrust
}

// Known reports whether the source appears in the trust table at all
func (t *SourceTable) Known(sourceName string) bool {
	_, ok := t.matchDomain(sourceName)
	return ok
}
