package experiment

import "strconv"

// Synchronization defaults shared by NIC and network simulators, in
// nanoseconds.
const (
	DefaultSyncPeriod uint64 = 100
	DefaultPCILatency uint64 = 500
	DefaultEthLatency uint64 = 500
)

// Sync modes understood by the behavioural NIC models.
const (
	SyncModes   = 0
	SyncBarrier = 1
)

// NIC is a simulated network card attached to one network. Latencies and
// the sync period are in nanoseconds.
type NIC struct {
	Name       string  `json:"name" yaml:"name"`
	Kind       NICKind `json:"kind" yaml:"kind"`
	Network    string  `json:"network" yaml:"network"`
	SyncMode   int     `json:"sync_mode" yaml:"sync_mode"`
	StartTick  uint64  `json:"start_tick,omitempty" yaml:"start_tick,omitempty"`
	SyncPeriod uint64  `json:"sync_period" yaml:"sync_period"`
	PCILatency uint64  `json:"pci_latency" yaml:"pci_latency"`
	EthLatency uint64  `json:"eth_latency" yaml:"eth_latency"`
}

// Sockets locates the channels a NIC simulator connects to.
type Sockets struct {
	PCI   string
	Eth   string
	SHMem string
}

// NewNIC returns a NIC of the given kind attached to network.
func NewNIC(name string, kind NICKind, network string) *NIC {
	return &NIC{
		Name:       name,
		Kind:       kind,
		Network:    network,
		SyncMode:   SyncModes,
		SyncPeriod: DefaultSyncPeriod,
		PCILatency: DefaultPCILatency,
		EthLatency: DefaultEthLatency,
	}
}

// Args renders the positional arguments of a behavioural NIC binary:
//
//	PCI-SOCKET ETH-SOCKET SHM SYNC-MODE START-TICK SYNC-PERIOD PCI-LATENCY ETH-LATENCY
//
// The optional trailing arguments are always emitted so the command line
// does not depend on the binary's built-in defaults.
func (n *NIC) Args(s Sockets) []string {
	return []string{
		s.PCI,
		s.Eth,
		s.SHMem,
		strconv.Itoa(n.SyncMode),
		strconv.FormatUint(n.StartTick, 10),
		strconv.FormatUint(n.SyncPeriod, 10),
		strconv.FormatUint(n.PCILatency, 10),
		strconv.FormatUint(n.EthLatency, 10),
	}
}
