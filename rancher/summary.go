package rancher

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gbme/platform-assistant/resources"
)

// nodeFetchLimit caps concurrent /v3/nodes calls.
const nodeFetchLimit = 10

// Filter selects clusters for Summaries. The zero Filter matches every cluster.
type Filter struct {
	ID   string
	Name string // case-insensitive substring
}

func (f Filter) match(c Cluster) bool {
	if f.ID != "" && c.ID != f.ID {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

// FindClusters returns the clusters whose name contains name (case-insensitive).
func (c *Client) FindClusters(ctx context.Context, name string) ([]Cluster, error) {
	all, err := c.Clusters(ctx)
	if err != nil {
		return nil, err
	}
	return filterClusters(all, Filter{Name: name}), nil
}

// Summaries returns the matching clusters with their nodes.
// A cluster whose nodes cannot be listed is still returned, with no nodes.
func (c *Client) Summaries(ctx context.Context, f Filter) ([]ClusterSummary, error) {
	all, err := c.Clusters(ctx)
	if err != nil {
		return nil, err
	}
	matches := filterClusters(all, f)

	nodes, errs := c.nodesPerCluster(ctx, matches)
	if errs != nil {
		log.Ctx(ctx).Warn().Err(errs).Str("component", "rancher").Msg("some cluster nodes could not be listed")
	}

	result := make([]ClusterSummary, 0, len(matches))
	for i, cl := range matches {
		result = append(result, Summarize(cl, nodes[i]))
	}
	return result, nil
}

// Statistics counts clusters, active clusters and nodes across the installation.
func (c *Client) Statistics(ctx context.Context) (Statistics, error) {
	all, err := c.Clusters(ctx)
	if err != nil {
		return Statistics{}, err
	}
	nodes, errs := c.nodesPerCluster(ctx, all)
	if errs != nil {
		log.Ctx(ctx).Warn().Err(errs).Str("component", "rancher").Msg("node counts are incomplete")
	}
	return countStatistics(all, nodes), nil
}

// nodesPerCluster lists nodes for every cluster concurrently. The result is index-aligned
// with clusters; failed clusters get nil and their errors are aggregated.
func (c *Client) nodesPerCluster(ctx context.Context, clusters []Cluster) ([][]Node, error) {
	out := make([][]Node, len(clusters))
	var (
		mu   sync.Mutex
		errs *multierror.Error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(nodeFetchLimit)
	for i, cl := range clusters {
		i, cl := i, cl
		g.Go(func() error {
			nodes, err := c.Nodes(gctx, cl.ID)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("cluster %s: %w", cl.Name, err))
				mu.Unlock()
				return nil // skip cluster, don't fail the whole request
			}
			out[i] = nodes
			return nil
		})
	}
	_ = g.Wait()
	return out, errs.ErrorOrNil()
}

// Summarize builds a ClusterSummary from a cluster and its nodes.
func Summarize(cl Cluster, nodes []Node) ClusterSummary {
	if nodes == nil {
		nodes = []Node{}
	}
	s := ClusterSummary{
		Cluster:       cl,
		Nodes:         nodes,
		TotalNodes:    len(nodes),
		DownNodeNames: []string{},
	}
	for _, n := range nodes {
		if n.Down {
			s.DownNodes++
			s.DownNodeNames = append(s.DownNodeNames, n.Name)
		}
	}
	return s
}

func countStatistics(clusters []Cluster, nodes [][]Node) Statistics {
	st := Statistics{TotalClusters: len(clusters)}
	for i, cl := range clusters {
		if strings.EqualFold(cl.State, "active") {
			st.ActiveClusters++
		}
		st.TotalNodes += len(nodes[i])
	}
	return st
}

func filterClusters(all []Cluster, f Filter) []Cluster {
	out := make([]Cluster, 0, len(all))
	for _, cl := range all {
		if f.match(cl) {
			out = append(out, cl)
		}
	}
	return out
}

// IsActive reports whether the cluster state is healthy.
func (c Cluster) IsActive() bool {
	return resources.IsUp(c.State)
}
