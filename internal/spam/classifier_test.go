package spam

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	c := New(DefaultRules())

	tests := []struct {
		name string
		url  string
		want Verdict
	}{
		{
			name: "clean url",
			url:  "https://example.com",
			want: Verdict{},
		},
		{
			name: "keyword wins over tld",
			url:  "https://best-casino-games.xyz/win-money",
			want: Verdict{Spam: true, Reason: "URL contains blocked keyword: casino"},
		},
		{
			name: "keyword is case insensitive",
			url:  "https://example.com/CHEAP-Viagra",
			want: Verdict{Spam: true, Reason: "URL contains blocked keyword: viagra"},
		},
		{
			name: "suspicious tld",
			url:  "https://example.xyz",
			want: Verdict{Spam: true, Reason: "URL uses suspicious TLD: .xyz"},
		},
		{
			name: "suspicious tld with path",
			url:  "https://example.top/some/page?q=1",
			want: Verdict{Spam: true, Reason: "URL uses suspicious TLD: .top"},
		},
		{
			name: "tld only in path is ignored",
			url:  "https://example.com/archive.online",
			want: Verdict{},
		},
		{
			name: "excessive subdomains",
			url:  "https://sub1.sub2.sub3.sub4.example.com",
			want: Verdict{Spam: true, Reason: "URL contains excessive subdomains"},
		},
		{
			name: "three dots are allowed",
			url:  "https://www.shop.example.co/path.with.many.dots.here",
			want: Verdict{},
		},
		{
			name: "excessive length",
			url:  "https://example.com/" + strings.Repeat("a", 1000),
			want: Verdict{Spam: true, Reason: "URL is suspiciously long"},
		},
		{
			name: "exactly max length",
			url:  "https://example.com/" + strings.Repeat("a", 1000-len("https://example.com/")),
			want: Verdict{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.url)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, c.Classify(tt.url))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("custom rules", func(t *testing.T) {
		c := New(Rules{
			Keywords:       []string{" Crypto ", ""},
			SuspiciousTLDs: []string{".ZIP"},
		})

		assert.Equal(t, Verdict{Spam: true, Reason: "URL contains blocked keyword: crypto"},
			c.Classify("https://crypto.example.com"))
		assert.Equal(t, Verdict{Spam: true, Reason: "URL uses suspicious TLD: .zip"},
			c.Classify("https://download.zip"))
		assert.Equal(t, Verdict{}, c.Classify("https://casino.example.com"))
		assert.Equal(t, DefaultMaxSubdomainDots, c.maxSubdomainDots)
		assert.Equal(t, DefaultMaxURLLength, c.maxURLLength)
	})

	t.Run("rules are copied", func(t *testing.T) {
		keywords := []string{"foo"}
		c := New(Rules{Keywords: keywords})

		keywords[0] = "bar"

		assert.True(t, c.Classify("https://foo.example.com").Spam)
		assert.False(t, c.Classify("https://bar.example.com").Spam)
	})
}

func TestAuthority(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://example.com/path", want: "example.com"},
		{in: "https://example.com?q=1", want: "example.com"},
		{in: "https://example.com#top", want: "example.com"},
		{in: "example.com/path", want: "example.com"},
		{in: "https://example.com:8080", want: "example.com:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, authority(tt.in))
		})
	}
}

func TestHostname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "example.com", want: "example.com"},
		{in: "example.com:8080", want: "example.com"},
		{in: "user:pass@example.com", want: "example.com"},
		{in: "a.b.c.d@example.com:443", want: "example.com"},
		{in: "a@b@example.com", want: "example.com"},
		{in: "[2001:db8::1]:8080", want: "[2001:db8::1]"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, hostname(tt.in))
		})
	}
}

func TestClassify_PortAndUserinfo(t *testing.T) {
	c := New(DefaultRules())

	tests := []struct {
		name string
		in   string
		want Verdict
	}{
		{
			name: "suspicious tld with port",
			in:   "https://evil.xyz:443/",
			want: Verdict{Spam: true, Reason: "URL uses suspicious TLD: .xyz"},
		},
		{
			name: "suspicious tld behind userinfo",
			in:   "https://user@evil.top",
			want: Verdict{Spam: true, Reason: "URL uses suspicious TLD: .top"},
		},
		{
			name: "dots in userinfo are not subdomains",
			in:   "https://a.b.c.d@x.com/",
			want: Verdict{},
		},
		{
			name: "tld-like userinfo is ignored",
			in:   "https://me.xyz@example.com:8080/",
			want: Verdict{},
		},
		{
			name: "excessive subdomains with port",
			in:   "https://a.b.c.d.example.com:8080/",
			want: Verdict{Spam: true, Reason: "URL contains excessive subdomains"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.in))
		})
	}
}
