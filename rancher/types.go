package rancher

import (
	"strconv"

	"github.com/gbme/platform-assistant/resources"
)

// --- Response types ---

// Cluster is the summary of one Rancher-managed cluster.
type Cluster struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	State             string      `json:"state"`
	Provider          string      `json:"provider"`
	K8sVersion        string      `json:"k8s_version"`
	NodeCount         *int        `json:"node_count"` // nil if Rancher did not report it
	Conditions        []Condition `json:"conditions"`
	CPUCapacity       string      `json:"cpu_capacity"`
	CPURequested      string      `json:"cpu_requested"`
	MemoryCapacity    string      `json:"memory_capacity"`
	MemoryRequested   string      `json:"memory_requested"`
	AllocatableCPU    string      `json:"allocatable_cpu"`
	AllocatableMemory string      `json:"allocatable_memory"`
}

// Node is the summary of one cluster node.
type Node struct {
	Name              string      `json:"name"`
	State             string      `json:"state"`
	Roles             []string    `json:"roles"`
	OSImage           string      `json:"os_image"`
	Kernel            string      `json:"kernel"`
	CPUCount          string      `json:"cpu_count"`
	CPUCapacity       string      `json:"cpu_capacity"`
	CPURequested      string      `json:"cpu_requested"`
	MemoryCapacity    string      `json:"memory_capacity"`
	MemoryRequested   string      `json:"memory_requested"`
	AllocatableCPU    string      `json:"allocatable_cpu"`
	AllocatableMemory string      `json:"allocatable_memory"`
	Conditions        []Condition `json:"conditions"`
	Down              bool        `json:"is_down"`
}

// ClusterSummary is a cluster plus its nodes.
type ClusterSummary struct {
	Cluster
	Nodes         []Node   `json:"nodes"`
	TotalNodes    int      `json:"total_nodes"`
	DownNodes     int      `json:"down_nodes"`
	DownNodeNames []string `json:"down_node_names"`
}

// Statistics are the aggregate counters shown in the widget header.
type Statistics struct {
	TotalClusters  int `json:"total_clusters"`
	ActiveClusters int `json:"active_clusters"`
	TotalNodes     int `json:"total_nodes"`
}

type Condition struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// --- Rancher v3 wire types ---

type collection[T any] struct {
	Data []T `json:"data"`
}

type apiCluster struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	State       string            `json:"state"`
	Provider    string            `json:"provider"`
	DriverName  string            `json:"driver"`
	NodeCount   *int              `json:"nodeCount"`
	Conditions  []Condition       `json:"conditions"`
	Allocatable map[string]string `json:"allocatable"`
	Requested   map[string]string `json:"requested"`
	Capacity    map[string]string `json:"capacity"`
	RKEConfig   *struct {
		KubernetesVersion string `json:"kubernetesVersion"`
	} `json:"rancherKubernetesEngineConfig"`
	Version *struct {
		GitVersion string `json:"gitVersion"`
	} `json:"version"`
}

func (ac apiCluster) toCluster() Cluster {
	provider := firstNonEmpty(ac.Provider, ac.DriverName, "unknown")
	version := "N/A"
	if ac.Version != nil && ac.Version.GitVersion != "" {
		version = ac.Version.GitVersion
	}
	if ac.RKEConfig != nil && ac.RKEConfig.KubernetesVersion != "" {
		version = ac.RKEConfig.KubernetesVersion
	}
	return Cluster{
		ID:                ac.ID,
		Name:              ac.Name,
		State:             firstNonEmpty(ac.State, "unknown"),
		Provider:          provider,
		K8sVersion:        version,
		NodeCount:         ac.NodeCount,
		Conditions:        ac.Conditions,
		CPUCapacity:       ac.Capacity["cpu"],
		CPURequested:      ac.Requested["cpu"],
		MemoryCapacity:    ac.Capacity["memory"],
		MemoryRequested:   ac.Requested["memory"],
		AllocatableCPU:    ac.Allocatable["cpu"],
		AllocatableMemory: ac.Allocatable["memory"],
	}
}

type apiNode struct {
	NodeName          string            `json:"nodeName"`
	RequestedHostname string            `json:"requestedHostname"`
	State             string            `json:"state"`
	ControlPlane      bool              `json:"controlPlane"`
	Etcd              bool              `json:"etcd"`
	Worker            bool              `json:"worker"`
	Conditions        []Condition       `json:"conditions"`
	Allocatable       map[string]string `json:"allocatable"`
	Requested         map[string]string `json:"requested"`
	Capacity          map[string]string `json:"capacity"`
	Info              struct {
		OS struct {
			OperatingSystem string `json:"operatingSystem"`
			KernelVersion   string `json:"kernelVersion"`
		} `json:"os"`
		CPU struct {
			Count int `json:"count"`
		} `json:"cpu"`
	} `json:"info"`
}

func (an apiNode) toNode() Node {
	state := firstNonEmpty(an.State, "unknown")
	cpuCount := an.Capacity["cpu"]
	if an.Info.CPU.Count > 0 {
		cpuCount = strconv.Itoa(an.Info.CPU.Count)
	}
	return Node{
		Name:              firstNonEmpty(an.NodeName, an.RequestedHostname, "unknown"),
		State:             state,
		Roles:             resources.NodeRoles(an.ControlPlane, an.Etcd, an.Worker),
		OSImage:           firstNonEmpty(an.Info.OS.OperatingSystem, "N/A"),
		Kernel:            firstNonEmpty(an.Info.OS.KernelVersion, "N/A"),
		CPUCount:          firstNonEmpty(cpuCount, "N/A"),
		CPUCapacity:       an.Capacity["cpu"],
		CPURequested:      an.Requested["cpu"],
		MemoryCapacity:    an.Capacity["memory"],
		MemoryRequested:   an.Requested["memory"],
		AllocatableCPU:    an.Allocatable["cpu"],
		AllocatableMemory: an.Allocatable["memory"],
		Conditions:        an.Conditions,
		Down:              !resources.IsUp(state),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
