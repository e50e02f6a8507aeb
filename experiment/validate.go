package experiment

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

// Validate checks the structural invariants of the descriptor and returns
// every violation found, joined. Each violation wraps ErrInvalid.
func (e *Experiment) Validate() error {
	var errs []error

	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format,
			append([]any{ErrInvalid}, args...)...))
	}

	if errs = nullEntries(e); len(errs) > 0 {
		return errors.Join(errs...)
	}

	// The name ends up in file names under the output directory.
	switch {
	case e.Name == "":
		fail("experiment name is empty")
	case e.Name == "." || e.Name == "..", strings.ContainsAny(e.Name, `/\`):
		fail("experiment name %q is not a valid file name", e.Name)
	}

	if e.Timeout < 0 {
		fail("negative timeout %s", e.Timeout)
	}

	names := make(map[string]string)
	claim := func(kind, name string) {
		if name == "" {
			fail("%s with empty name", kind)

			return
		}
		if prev, ok := names[name]; ok {
			fail("%s %q collides with %s of the same name", kind, name, prev)

			return
		}
		names[name] = kind
	}

	for _, n := range e.Networks {
		claim("network", n.Name)

		if !n.Kind.Known() {
			fail("network %q: unknown kind %q", n.Name, n.Kind)
		}
	}

	for _, n := range e.NICs {
		claim("nic", n.Name)

		if !n.Kind.Known() {
			fail("nic %q: unknown kind %q", n.Name, n.Kind)
		}

		if e.Network(n.Network) == nil {
			fail("nic %q attached to unknown network %q", n.Name, n.Network)
		}
		if n.SyncMode != SyncModes && n.SyncMode != SyncBarrier {
			fail("nic %q: unsupported sync mode %d", n.Name, n.SyncMode)
		}
	}

	usedNICs := make(map[string]string)
	ips := make(map[netip.Addr]string)
	waiting := 0

	for _, h := range e.Hosts {
		claim("host", h.Name)

		if !h.Kind.Known() {
			fail("host %q: unknown kind %q", h.Name, h.Kind)
		}
		if !h.Node.Kind.Known() {
			fail("host %q: unknown node kind %q", h.Name, h.Node.Kind)
		}
		if !h.Node.App.Kind.Known() {
			fail("host %q: unknown app kind %q", h.Name, h.Node.App.Kind)
		}

		if e.NIC(h.NIC) == nil {
			fail("host %q uses unknown nic %q", h.Name, h.NIC)
		} else if other, ok := usedNICs[h.NIC]; ok {
			fail("nic %q shared by hosts %q and %q", h.NIC, other, h.Name)
		} else {
			usedNICs[h.NIC] = h.Name
		}

		addr, err := netip.ParseAddr(h.Node.IP)
		switch {
		case err != nil || !addr.Is4():
			fail("host %q: invalid IPv4 address %q", h.Name, h.Node.IP)
		case ips[addr] != "":
			fail("host %q: address %s already used by %q",
				h.Name, addr, ips[addr])
		default:
			ips[addr] = h.Name
		}

		if h.Node.Prefix < 0 || h.Node.Prefix > 32 {
			fail("host %q: invalid prefix length %d", h.Name, h.Node.Prefix)
		}
		if h.Sleep < 0 {
			fail("host %q: negative sleep %d", h.Name, h.Sleep)
		}
		if h.Wait {
			waiting++
		}
	}

	if len(e.Hosts) > 0 && waiting == 0 {
		fail("no host has wait set; the run would never finish")
	}

	errs = append(errs, e.validateApps()...)

	return errors.Join(errs...)
}

// nullEntries reports components that decoded as null. Every other check
// dereferences them, so Validate stops here when there are any.
func nullEntries(e *Experiment) []error {
	var errs []error

	check := func(kind string, i int, isNil bool) {
		if isNil {
			errs = append(errs, fmt.Errorf("%w: %s %d is null", ErrInvalid, kind, i))
		}
	}

	for i, n := range e.Networks {
		check("network", i, n == nil)
	}
	for i, n := range e.NICs {
		check("nic", i, n == nil)
	}
	for i, h := range e.Hosts {
		check("host", i, h == nil)
	}

	return errs
}

func (e *Experiment) validateApps() []error {
	var errs []error

	replicas := e.HostsWithApp(AppNOPaxosReplica)
	replicaIPs := make(map[string]bool, len(replicas))
	seen := make(map[int]string, len(replicas))

	for _, r := range replicas {
		replicaIPs[r.Node.IP] = true

		idx := r.Node.App.Index
		if idx < 0 || idx >= len(replicas) {
			errs = append(errs, fmt.Errorf(
				"%w: replica %q: index %d out of range [0, %d)",
				ErrInvalid, r.Name, idx, len(replicas)))

			continue
		}
		if other, ok := seen[idx]; ok {
			errs = append(errs, fmt.Errorf(
				"%w: replicas %q and %q share index %d",
				ErrInvalid, other, r.Name, idx))

			continue
		}
		seen[idx] = r.Name
	}

	for _, c := range e.HostsWithApp(AppNOPaxosClient) {
		if len(c.Node.App.ServerIPs) == 0 {
			errs = append(errs, fmt.Errorf(
				"%w: client %q has no server addresses", ErrInvalid, c.Name))
		}

		for _, ip := range c.Node.App.ServerIPs {
			if !replicaIPs[ip] {
				errs = append(errs, fmt.Errorf(
					"%w: client %q: server %s is not a replica",
					ErrInvalid, c.Name, ip))
			}
		}
	}

	return errs
}
