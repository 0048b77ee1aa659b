// Package chat answers assistant messages from the Rancher clusters and the server inventory.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"

	"github.com/gbme/platform-assistant/inventory"
	"github.com/gbme/platform-assistant/rancher"
)

var ErrEmptyMessage = errors.New("please enter a message")

// ClusterSource is implemented by rancher.Client and rancher.Mock.
type ClusterSource interface {
	Summaries(ctx context.Context, f rancher.Filter) ([]rancher.ClusterSummary, error)
	Statistics(ctx context.Context) (rancher.Statistics, error)
}

// RecordSource is implemented by inventory.Store.
type RecordSource interface {
	SearchByServer(keyword string) ([]inventory.Record, error)
	SearchByApplication(keyword string) ([]inventory.Record, error)
	SearchAll(keyword string) ([]inventory.Record, error)
	Statistics() (inventory.Statistics, error)
}

// Reply is the answer to one message. At most one of Clusters and Records is set.
type Reply struct {
	Message  string                   `json:"message"`
	Query    Query                    `json:"query"`
	Count    int                      `json:"count"`
	Clusters []rancher.ClusterSummary `json:"clusters,omitempty"`
	Records  []inventory.Record       `json:"records,omitempty"`
}

// Stats merges the counters of every configured source.
type Stats struct {
	TotalClusters      int `json:"total_clusters"`
	ActiveClusters     int `json:"active_clusters"`
	TotalNodes         int `json:"total_nodes"`
	TotalRecords       int `json:"total_records"`
	UniqueServers      int `json:"unique_servers"`
	UniqueApplications int `json:"unique_applications"`
}

// Assistant answers chat messages. Either source may be nil, but not both.
type Assistant struct {
	clusters ClusterSource
	records  RecordSource
}

func New(clusters ClusterSource, records RecordSource) *Assistant {
	return &Assistant{clusters: clusters, records: records}
}

// Respond parses message and looks it up. Clusters are searched first; when no cluster
// matches, the inventory is searched.
func (a *Assistant) Respond(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	q := ParseQuery(message)
	logger := log.Ctx(ctx).With().Str("component", "chat").Str("intent", string(q.Intent)).Str("keyword", q.Keyword).Logger()

	if a.clusters != nil {
		name, all := clusterLookup(message, q)
		summaries, err := a.clusters.Summaries(ctx, rancher.Filter{Name: name})
		if err != nil {
			return Reply{}, fmt.Errorf("search clusters: %w", err)
		}
		if len(summaries) > 0 {
			logger.Debug().Int("clusters", len(summaries)).Msg("answered from rancher")
			return clusterReply(q, name, all, summaries), nil
		}
		if a.records == nil {
			return notFound(q, name), nil
		}
	}

	records, err := a.searchRecords(q)
	if err != nil {
		return Reply{}, fmt.Errorf("search inventory: %w", err)
	}
	logger.Debug().Int("records", len(records)).Msg("answered from inventory")
	if len(records) == 0 {
		return notFound(q, q.Keyword), nil
	}
	return recordReply(q, records), nil
}

func (a *Assistant) searchRecords(q Query) ([]inventory.Record, error) {
	switch q.Intent {
	case IntentServer:
		return a.records.SearchByServer(q.Keyword)
	case IntentApplication:
		return a.records.SearchByApplication(q.Keyword)
	default:
		return a.records.SearchAll(q.Keyword)
	}
}

// Statistics collects the counters of every source. A failing source leaves its counters
// at zero; the failures are returned together with the partial result.
func (a *Assistant) Statistics(ctx context.Context) (Stats, error) {
	var (
		st   Stats
		errs *multierror.Error
	)
	if a.clusters != nil {
		cs, err := a.clusters.Statistics(ctx)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("rancher statistics: %w", err))
		} else {
			st.TotalClusters, st.ActiveClusters, st.TotalNodes = cs.TotalClusters, cs.ActiveClusters, cs.TotalNodes
		}
	}
	if a.records != nil {
		rs, err := a.records.Statistics()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("inventory statistics: %w", err))
		} else {
			st.TotalRecords, st.UniqueServers, st.UniqueApplications = rs.TotalRecords, rs.UniqueServers, rs.UniqueApplications
		}
	}
	return st, errs.ErrorOrNil()
}

// Reply messages are Markdown. Values taken from the query or from Rancher are inserted
// as literal text: whitespace runs become one space and inline Markdown is backslash
// escaped. HTML characters are left to the renderer.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
	"(", `\(`, ")", `\)`, "!", `\!`, "#", `\#`,
)

func literal(s string) string {
	return markdownEscaper.Replace(strings.Join(strings.Fields(s), " "))
}

func notFound(q Query, keyword string) Reply {
	if keyword == "" {
		keyword = q.Keyword
	}
	return Reply{
		Message: fmt.Sprintf("I couldn't find any information about '%s'. Please check the spelling or try a different query.", literal(keyword)),
		Query:   q,
	}
}

func clusterReply(q Query, name string, all bool, summaries []rancher.ClusterSummary) Reply {
	var b strings.Builder
	if all {
		fmt.Fprintf(&b, "Showing all %d cluster(s):", len(summaries))
	} else {
		fmt.Fprintf(&b, "Found %d cluster(s) matching '%s':", len(summaries), literal(name))
	}
	for _, s := range summaries {
		if s.DownNodes > 0 {
			fmt.Fprintf(&b, "\n\n**%d node(s) down** in %s: %s", s.DownNodes, literal(s.Name), literal(strings.Join(s.DownNodeNames, ", ")))
		}
	}
	return Reply{Message: b.String(), Query: q, Count: len(summaries), Clusters: summaries}
}

func recordReply(q Query, records []inventory.Record) Reply {
	var msg string
	switch q.Intent {
	case IntentServer:
		msg = fmt.Sprintf("Found %d application(s) running on server '%s':", len(records), literal(q.Keyword))
	case IntentApplication:
		msg = fmt.Sprintf("Application '%s' is running on %d server(s):", literal(q.Keyword), len(records))
	default:
		msg = fmt.Sprintf("Found %d matching record(s) for '%s':", len(records), literal(q.Keyword))
	}
	return Reply{Message: msg, Query: q, Count: len(records), Records: records}
}
