// Package radio answers whether the host has any connected network interface.
package radio

import (
	"net"
	"strings"
)

// Interface is the subset of interface data the checker needs.
type Interface struct {
	Name  string
	Flags net.Flags
	Addrs []net.Addr
}

// Lister enumerates interfaces.
type Lister func() ([]Interface, error)

// Checker reports radio-level connectivity.
type Checker struct {
	allowed map[string]struct{}
	list    Lister
}

// NewChecker returns a checker over the system interfaces. When names is not
// empty only those interfaces are considered.
func NewChecker(names []string) *Checker {
	return newChecker(names, systemInterfaces)
}

func newChecker(names []string, list Lister) *Checker {
	c := &Checker{list: list}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if c.allowed == nil {
			c.allowed = make(map[string]struct{})
		}
		c.allowed[n] = struct{}{}
	}
	return c
}

// Connected reports whether an interface is up, running, not loopback and
// holds a global or link-local unicast address. Enumeration errors count as
// not connected.
func (c *Checker) Connected() bool {
	ifaces, err := c.list()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if c.allowed != nil {
			if _, ok := c.allowed[iface.Name]; !ok {
				continue
			}
		}
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagRunning == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if hasUsableAddr(iface.Addrs) {
			return true
		}
	}
	return false
}

func hasUsableAddr(addrs []net.Addr) bool {
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip == nil || ip.IsLoopback() || ip.IsUnspecified() {
			continue
		}
		if ip.IsGlobalUnicast() || ip.IsLinkLocalUnicast() {
			return true
		}
	}
	return false
}

func systemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		out = append(out, Interface{Name: iface.Name, Flags: iface.Flags, Addrs: addrs})
	}
	return out, nil
}
