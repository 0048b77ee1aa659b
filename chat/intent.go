package chat

import (
	"regexp"
	"strings"
)

// Intent is what a query asks for.
type Intent string

const (
	IntentServer      Intent = "search_server"
	IntentApplication Intent = "search_application"
	IntentAll         Intent = "search_all"
)

// Query is a parsed chat message.
type Query struct {
	Intent  Intent `json:"intent"`
	Keyword string `json:"keyword"`
}

// Patterns are tried in order; the first match wins. Keywords come from the first group.
var (
	serverPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:server|node|host)\s+(\S+)`),
		regexp.MustCompile(`\bon\s+(\S+)`),
		regexp.MustCompile(`(\S+)\s+server\b`),
		regexp.MustCompile(`\bshow\s+(?:me\s+)?(\S+)`),
	}
	applicationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bapplication\s+(\S+)`),
		regexp.MustCompile(`\bapp\s+(\S+)`),
		regexp.MustCompile(`\b(?:where|which)\b.*?\brunning\s+(\S+)`),
	}
	clusterPattern = regexp.MustCompile(`\bclusters?\s+(\S+)`)
)

// ParseQuery classifies a message as a server, application or free-text search.
//
// A server pattern is ignored when "application" appears in the message before the end of
// its keyword, so "show me application nginx" is an application search.
func ParseQuery(message string) Query {
	q := strings.ToLower(strings.TrimSpace(message))

	for _, re := range serverPatterns {
		m := re.FindStringSubmatchIndex(q)
		if m == nil || strings.Contains(q[:m[3]], "application") {
			continue
		}
		return Query{Intent: IntentServer, Keyword: q[m[2]:m[3]]}
	}
	for _, re := range applicationPatterns {
		if m := re.FindStringSubmatch(q); m != nil {
			return Query{Intent: IntentApplication, Keyword: m[1]}
		}
	}
	return Query{Intent: IntentAll, Keyword: strings.TrimSpace(message)}
}

var allClusterWords = map[string]bool{
	"all": true, "clusters": true, "everything": true, "cluster": true, "*": true,
}

var listClustersPattern = regexp.MustCompile(`^(?:(?:show|list)\s+)?(?:me\s+)?(?:all\s+)?(?:the\s+)?clusters?$|\ball\s+clusters\b`)

// clusterLookup returns the cluster name fragment a message refers to, or all=true when
// it asks for every cluster.
func clusterLookup(message string, q Query) (name string, all bool) {
	lower := strings.ToLower(strings.TrimSpace(message))
	if listClustersPattern.MatchString(lower) {
		return "", true
	}
	name = strings.ToLower(q.Keyword)
	if m := clusterPattern.FindStringSubmatch(lower); m != nil {
		name = m[1]
	}
	if allClusterWords[name] {
		return "", true
	}
	return name, false
}
