// Package spam flags URLs that look like spam using static keyword and domain heuristics.
package spam

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultKeywords are the substrings that mark a URL as spam when no list is configured.
var DefaultKeywords = []string{
	"casino", "poker", "viagra", "cialis", "sex", "xxx",
	"porn", "bet", "lottery", "free-money", "make-money-fast",
	"get-rich", "pharma", "meds", "pills", "prescription",
}

// DefaultSuspiciousTLDs are the top-level domains treated as suspicious when no list is configured.
var DefaultSuspiciousTLDs = []string{".xyz", ".top", ".win", ".loan", ".online"}

const (
	DefaultMaxSubdomainDots = 3
	DefaultMaxURLLength     = 1000
)

// Rules is the static configuration of a Classifier.
type Rules struct {
	Keywords         []string
	SuspiciousTLDs   []string
	MaxSubdomainDots int
	MaxURLLength     int
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		Keywords:         DefaultKeywords,
		SuspiciousTLDs:   DefaultSuspiciousTLDs,
		MaxSubdomainDots: DefaultMaxSubdomainDots,
		MaxURLLength:     DefaultMaxURLLength,
	}
}

// Verdict is the outcome of classifying a URL. Reason is empty when Spam is false.
type Verdict struct {
	Spam   bool
	Reason string
}

// Classifier evaluates URLs against an immutable copy of its Rules.
// It is safe for concurrent use.
type Classifier struct {
	keywords         []string
	tlds             []string
	maxSubdomainDots int
	maxURLLength     int
}

// New returns a Classifier for rules. Zero limits fall back to the defaults.
func New(rules Rules) *Classifier {
	c := &Classifier{
		keywords:         lowerAll(rules.Keywords),
		tlds:             lowerAll(rules.SuspiciousTLDs),
		maxSubdomainDots: rules.MaxSubdomainDots,
		maxURLLength:     rules.MaxURLLength,
	}

	if c.maxSubdomainDots <= 0 {
		c.maxSubdomainDots = DefaultMaxSubdomainDots
	}
	if c.maxURLLength <= 0 {
		c.maxURLLength = DefaultMaxURLLength
	}

	return c
}

// Classify runs the checks in order and stops at the first match:
// blocked keyword, suspicious TLD, excessive subdomains, excessive length.
func (c *Classifier) Classify(rawURL string) Verdict {
	lower := strings.ToLower(rawURL)

	for _, keyword := range c.keywords {
		if strings.Contains(lower, keyword) {
			return Verdict{Spam: true, Reason: fmt.Sprintf("URL contains blocked keyword: %s", keyword)}
		}
	}

	host := hostname(authority(lower))

	for _, tld := range c.tlds {
		if strings.HasSuffix(host, tld) {
			return Verdict{Spam: true, Reason: fmt.Sprintf("URL uses suspicious TLD: %s", tld)}
		}
	}

	if strings.Count(host, ".") > c.maxSubdomainDots {
		return Verdict{Spam: true, Reason: "URL contains excessive subdomains"}
	}

	if utf8.RuneCountInString(rawURL) > c.maxURLLength {
		return Verdict{Spam: true, Reason: "URL is suspiciously long"}
	}

	return Verdict{}
}

// authority returns the part after the scheme separator up to the first path, query or fragment delimiter.
func authority(u string) string {
	if _, rest, ok := strings.Cut(u, "://"); ok {
		u = rest
	}

	if i := strings.IndexAny(u, "/?#"); i >= 0 {
		u = u[:i]
	}

	return u
}

// hostname drops userinfo and port from an authority.
func hostname(authority string) string {
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}

	if strings.HasPrefix(authority, "[") {
		if end := strings.Index(authority, "]"); end >= 0 {
			return authority[:end+1]
		}
		return authority
	}

	if host, _, ok := strings.Cut(authority, ":"); ok {
		return host
	}

	return authority
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
