package research

import (
	"net/url"
	"regexp"
	"strings"
)

// amazonDomains covers every Amazon marketplace TLD. Amazon URLs are routed
// to the marketplace scrape variant, everything else to the general one.
var amazonDomains = []string{
	"amazon.com",    // USA
	"amazon.ca",     // Canada
	"amazon.com.mx", // Mexico
	"amazon.com.br", // Brazil
	"amazon.co.uk",  // United Kingdom
	"amazon.de",     // Germany
	"amazon.fr",     // France
	"amazon.it",     // Italy
	"amazon.es",     // Spain
	"amazon.nl",     // Netherlands
	"amazon.pl",     // Poland
	"amazon.se",     // Sweden
	"amazon.com.be", // Belgium
	"amazon.ie",     // Ireland
	"amazon.in",     // India
	"amazon.co.jp",  // Japan
	"amazon.cn",     // China
	"amazon.sg",     // Singapore
	"amazon.sa",     // Saudi Arabia
	"amazon.ae",     // United Arab Emirates
	"amazon.com.tr", // Turkey
	"amazon.eg",     // Egypt
	"amazon.co.za",  // South Africa
	"amazon.com.au", // Australia
}

// Matches optional subdomains (www., m., smile., ...) followed by one of the
// marketplace domains, anchored to the whole host.
var amazonHostRe = func() *regexp.Regexp {
	escaped := make([]string, len(amazonDomains))
	for i, d := range amazonDomains {
		escaped[i] = regexp.QuoteMeta(d)
	}
	return regexp.MustCompile(`(?i)^(?:[\w-]+\.)*(` + strings.Join(escaped, "|") + `)$`)
}()

// IsAmazonURL reports whether the URL belongs to an Amazon marketplace,
// tolerating subdomains, ports and scheme-less inputs.
func IsAmazonURL(raw string) bool {
	if raw == "" {
		return false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		// Scheme-less URLs parse entirely into Path.
		host, _, _ = strings.Cut(parsed.Path, "/")
	}
	host, _, _ = strings.Cut(host, ":")
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}

	return amazonHostRe.MatchString(host)
}

// PartitionURLs splits candidates into Amazon and everything-else groups,
// preserving input order within each group.
func PartitionURLs(urls []string) (amazon, other []string) {
	for _, u := range urls {
		if IsAmazonURL(u) {
			amazon = append(amazon, u)
		} else {
			other = append(other, u)
		}
	}
	return amazon, other
}
