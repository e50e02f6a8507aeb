package experiment

import "fmt"

// HostSpec controls CreateBasicHosts.
type HostSpec struct {
	Count     int
	Prefix    string
	Network   *Network
	NICKind   NICKind
	HostKind  HostKind
	DiskImage string
	NodeKind  NodeKind
	// App builds the application config of the i-th host.
	App func(i int) App
	// IPStart is the host number of the first address (default 1).
	IPStart int
	// IPPrefix is the prefix length of every address (default 24).
	IPPrefix int
}

// CreateBasicHosts adds spec.Count hosts named "<prefix>.<i>" to e, each
// with its own NIC attached to spec.Network, and returns them in order.
// Addresses are allocated from 10.0.0.0/16 starting at spec.IPStart.
// With a nil spec.Network the NICs are left unattached, which Validate
// reports.
func CreateBasicHosts(e *Experiment, spec HostSpec) []*Host {
	var network string
	if spec.Network != nil {
		network = spec.Network.Name
	}

	ipStart := spec.IPStart
	if ipStart == 0 {
		ipStart = 1
	}

	prefix := spec.IPPrefix
	if prefix == 0 {
		prefix = 24
	}

	hosts := make([]*Host, 0, spec.Count)

	for i := 0; i < spec.Count; i++ {
		name := fmt.Sprintf("%s.%d", spec.Prefix, i)

		nic := NewNIC(name+".nic", spec.NICKind, network)
		e.AddNIC(nic)

		var app App
		if spec.App != nil {
			app = spec.App(i)
		}

		n := i + ipStart
		host := &Host{
			Name:      name,
			Kind:      spec.HostKind,
			DiskImage: spec.DiskImage,
			NIC:       nic.Name,
			Node: NodeConfig{
				Kind:   spec.NodeKind,
				IP:     fmt.Sprintf("10.0.%d.%d", n/256, n%256),
				Prefix: prefix,
				App:    app,
			},
		}
		e.AddHost(host)

		hosts = append(hosts, host)
	}

	return hosts
}
