// Package experiment describes simulated-network benchmark experiments: the
// networks, NICs and hosts an external simulation runner instantiates, and
// the per-host node and application configuration.
package experiment

import (
	"errors"
	"time"
)

// DefaultTimeout bounds a single experiment run.
const DefaultTimeout = 30 * time.Minute

var (
	// ErrUnknown is returned when a built-in experiment name is not registered.
	ErrUnknown = errors.New("unknown experiment")
	// ErrInvalid wraps every descriptor validation failure.
	ErrInvalid = errors.New("invalid experiment")
)

// NetworkKind selects the network simulator.
type NetworkKind string

const (
	NetNS3Sequencer NetworkKind = "ns3-sequencer"
	NetNS3Switch    NetworkKind = "ns3-switch"
	NetSwitchBM     NetworkKind = "switch-bm"
)

// NICKind selects the NIC simulator.
type NICKind string

const (
	NICCorundumBM        NICKind = "corundum-bm"
	NICCorundumVerilator NICKind = "corundum-verilator"
	NICI40eBM            NICKind = "i40e-bm"
)

// HostKind selects the host simulator.
type HostKind string

const (
	HostQemu HostKind = "qemu"
	HostGem5 HostKind = "gem5"
)

// NodeKind selects the guest OS configuration of a host.
type NodeKind string

const (
	NodeNOPaxos       NodeKind = "nopaxos"
	NodeCorundumLinux NodeKind = "corundum-linux"
)

// AppKind selects the application a host runs.
type AppKind string

const (
	AppNOPaxosReplica AppKind = "nopaxos-replica"
	AppNOPaxosClient  AppKind = "nopaxos-client"
)

// Known reports whether the runner can instantiate networks of kind k.
func (k NetworkKind) Known() bool {
	switch k {
	case NetNS3Sequencer, NetNS3Switch, NetSwitchBM:
		return true
	}

	return false
}

// Known reports whether the runner can instantiate NICs of kind k.
func (k NICKind) Known() bool {
	switch k {
	case NICCorundumBM, NICCorundumVerilator, NICI40eBM:
		return true
	}

	return false
}

// Known reports whether the runner can instantiate hosts of kind k.
func (k HostKind) Known() bool {
	return k == HostQemu || k == HostGem5
}

// Known reports whether k names a supported node configuration.
func (k NodeKind) Known() bool {
	return k == NodeNOPaxos || k == NodeCorundumLinux
}

// Known reports whether k names a supported application. The empty kind
// means the host runs no application.
func (k AppKind) Known() bool {
	switch k {
	case "", AppNOPaxosReplica, AppNOPaxosClient:
		return true
	}

	return false
}

// Experiment is a complete descriptor handed to the simulation runner.
type Experiment struct {
	Name       string     `json:"name" yaml:"name"`
	Timeout    Duration   `json:"timeout" yaml:"timeout"`
	Checkpoint bool       `json:"checkpoint,omitempty" yaml:"checkpoint,omitempty"`
	Networks   []*Network `json:"networks" yaml:"networks"`
	NICs       []*NIC     `json:"nics" yaml:"nics"`
	Hosts      []*Host    `json:"hosts" yaml:"hosts"`
}

// Network is a simulated network all attached NICs talk through.
// Latencies and the sync period are in nanoseconds.
type Network struct {
	Name       string      `json:"name" yaml:"name"`
	Kind       NetworkKind `json:"kind" yaml:"kind"`
	SyncPeriod uint64      `json:"sync_period" yaml:"sync_period"`
	EthLatency uint64      `json:"eth_latency" yaml:"eth_latency"`
}

// Host is a simulated machine with a single NIC.
type Host struct {
	Name      string     `json:"name" yaml:"name"`
	Kind      HostKind   `json:"kind" yaml:"kind"`
	DiskImage string     `json:"disk_image" yaml:"disk_image"`
	NIC       string     `json:"nic" yaml:"nic"`
	Node      NodeConfig `json:"node" yaml:"node"`
	// Sleep delays the application start, in seconds.
	Sleep int `json:"sleep,omitempty" yaml:"sleep,omitempty"`
	// Wait marks hosts whose completion ends the run.
	Wait bool `json:"wait,omitempty" yaml:"wait,omitempty"`
}

// NodeConfig is the guest configuration of a host.
type NodeConfig struct {
	Kind   NodeKind `json:"kind" yaml:"kind"`
	IP     string   `json:"ip" yaml:"ip"`
	Prefix int      `json:"prefix" yaml:"prefix"`
	App    App      `json:"app" yaml:"app"`
}

// App is the application a host runs.
type App struct {
	Kind      AppKind  `json:"kind" yaml:"kind"`
	Index     int      `json:"index" yaml:"index"`
	ServerIPs []string `json:"server_ips,omitempty" yaml:"server_ips,omitempty"`
	UseEhSeq  bool     `json:"use_eh_seq,omitempty" yaml:"use_eh_seq,omitempty"`
}

// New creates an empty experiment with the default timeout.
func New(name string) *Experiment {
	return &Experiment{
		Name:    name,
		Timeout: Duration(DefaultTimeout),
	}
}

// AddNetwork registers a network with the experiment.
func (e *Experiment) AddNetwork(n *Network) {
	e.Networks = append(e.Networks, n)
}

// AddNIC registers a NIC with the experiment.
func (e *Experiment) AddNIC(n *NIC) {
	e.NICs = append(e.NICs, n)
}

// AddHost registers a host with the experiment.
func (e *Experiment) AddHost(h *Host) {
	e.Hosts = append(e.Hosts, h)
}

// Network returns the network with the given name, or nil.
func (e *Experiment) Network(name string) *Network {
	for _, n := range e.Networks {
		if n != nil && n.Name == name {
			return n
		}
	}

	return nil
}

// NIC returns the NIC with the given name, or nil.
func (e *Experiment) NIC(name string) *NIC {
	for _, n := range e.NICs {
		if n != nil && n.Name == name {
			return n
		}
	}

	return nil
}

// HostsWithApp returns the hosts running the given application kind, in
// declaration order.
func (e *Experiment) HostsWithApp(kind AppKind) []*Host {
	var hosts []*Host
	for _, h := range e.Hosts {
		if h != nil && h.Node.App.Kind == kind {
			hosts = append(hosts, h)
		}
	}

	return hosts
}

// NewNetwork returns a network with default synchronization parameters.
func NewNetwork(name string, kind NetworkKind) *Network {
	return &Network{
		Name:       name,
		Kind:       kind,
		SyncPeriod: DefaultSyncPeriod,
		EthLatency: DefaultEthLatency,
	}
}
