package experiment

import (
	"fmt"
	"slices"
)

var builtins = map[string]func() *Experiment{
	"qemu-nopaxos-swseq": NOPaxosSwSeq,
}

// Names returns the registered built-in experiment names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Builtin returns a fresh copy of the named built-in experiment.
func Builtin(name string) (*Experiment, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknown, name)
	}

	return build(), nil
}

// NOPaxosSwSeq is NOPaxos with a software sequencer in the network
// simulator: three replicas and one client on QEMU hosts with behavioural
// Corundum NICs.
func NOPaxosSwSeq() *Experiment {
	e := New("qemu-nopaxos-swseq")

	net := NewNetwork("net", NetNS3Sequencer)
	e.AddNetwork(net)

	replicas := CreateBasicHosts(e, HostSpec{
		Count:     3,
		Prefix:    "replica",
		Network:   net,
		NICKind:   NICCorundumBM,
		HostKind:  HostQemu,
		DiskImage: "nopaxos",
		NodeKind:  NodeNOPaxos,
		App: func(int) App {
			return App{Kind: AppNOPaxosReplica}
		},
	})

	clients := CreateBasicHosts(e, HostSpec{
		Count:     1,
		Prefix:    "client",
		Network:   net,
		NICKind:   NICCorundumBM,
		HostKind:  HostQemu,
		DiskImage: "nopaxos",
		NodeKind:  NodeCorundumLinux,
		App: func(int) App {
			return App{Kind: AppNOPaxosClient}
		},
		IPStart: 4,
	})

	for i, r := range replicas {
		r.Node.App.Index = i
		r.Sleep = 1
	}

	for _, c := range clients {
		c.Node.App.ServerIPs = []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}
		c.Wait = true
	}

	return e
}
