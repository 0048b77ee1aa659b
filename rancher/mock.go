package rancher

import "context"

// MockToken switches a rancher source to demo data, like source=mock.
const MockToken = "mock-dev-token"

func IsMock(token string) bool {
	return token == MockToken
}

// Mock serves fixed demo clusters for local development without a Rancher installation.
type Mock struct {
	clusters []Cluster
	nodes    map[string][]Node
}

func NewMock() *Mock {
	m := &Mock{nodes: map[string][]Node{}}
	m.add(mockCluster("c-prod01", "production", "active", "rke2", "v1.28.9+rke2r1", "24", "17350m", "96Gi", "71Gi"),
		mockNode("prod-cp-1", "active", true, true, false, "8", "1800m", "32Gi", "6Gi"),
		mockNode("prod-worker-1", "active", false, false, true, "8", "7650m", "32Gi", "31Gi"),
		mockNode("prod-worker-2", "active", false, false, true, "8", "7900m", "32Gi", "34Gi"),
	)
	m.add(mockCluster("c-stag01", "staging", "active", "rke2", "v1.29.4+rke2r1", "12", "5200m", "48Gi", "22Gi"),
		mockNode("stag-cp-1", "active", true, true, true, "4", "1200m", "16Gi", "4Gi"),
		mockNode("stag-worker-1", "active", false, false, true, "4", "2900m", "16Gi", "12Gi"),
		mockNode("stag-worker-2", "unavailable", false, false, true, "4", "", "16Gi", ""),
	)
	m.add(mockCluster("c-dev01", "dev-sandbox", "updating", "k3s", "v1.30.1+k3s1", "4", "900m", "16Gi", "3584Mi"),
		mockNode("dev-1", "active", true, true, true, "4", "900m", "16777216Ki", "3584Mi"),
	)
	m.add(mockCluster("c-edge01", "edge-lab", "unavailable", "imported", "", "", "", "", ""))
	return m
}

func (m *Mock) add(cl Cluster, nodes ...Node) {
	m.clusters = append(m.clusters, cl)
	m.nodes[cl.ID] = nodes
}

// Summaries mirrors Client.Summaries.
func (m *Mock) Summaries(_ context.Context, f Filter) ([]ClusterSummary, error) {
	var out []ClusterSummary
	for _, cl := range filterClusters(m.clusters, f) {
		out = append(out, Summarize(cl, m.nodes[cl.ID]))
	}
	return out, nil
}

// Statistics mirrors Client.Statistics.
func (m *Mock) Statistics(_ context.Context) (Statistics, error) {
	nodes := make([][]Node, len(m.clusters))
	for i, cl := range m.clusters {
		nodes[i] = m.nodes[cl.ID]
	}
	return countStatistics(m.clusters, nodes), nil
}

// --- mock helpers ---

func mockCluster(id, name, state, provider, version, cpuCap, cpuReq, memCap, memReq string) Cluster {
	ac := apiCluster{
		ID:          id,
		Name:        name,
		State:       state,
		Provider:    provider,
		Capacity:    map[string]string{"cpu": cpuCap, "memory": memCap},
		Requested:   map[string]string{"cpu": cpuReq, "memory": memReq},
		Allocatable: map[string]string{"cpu": cpuCap, "memory": memCap},
	}
	if version != "" {
		ac.Version = &struct {
			GitVersion string `json:"gitVersion"`
		}{GitVersion: version}
	}
	return ac.toCluster()
}

func mockNode(name, state string, controlPlane, etcd, worker bool, cpuCap, cpuReq, memCap, memReq string) Node {
	an := apiNode{
		NodeName:     name,
		State:        state,
		ControlPlane: controlPlane,
		Etcd:         etcd,
		Worker:       worker,
		Capacity:     map[string]string{"cpu": cpuCap, "memory": memCap},
		Requested:    map[string]string{"cpu": cpuReq, "memory": memReq},
		Allocatable:  map[string]string{"cpu": cpuCap, "memory": memCap},
	}
	an.Info.OS.OperatingSystem = "Ubuntu 22.04.4 LTS"
	an.Info.OS.KernelVersion = "5.15.0-105-generic"
	return an.toNode()
}
