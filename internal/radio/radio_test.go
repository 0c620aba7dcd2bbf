package radio

import (
	"errors"
	"net"
	"testing"
)

func ipNet(cidr string) net.Addr {
	ip, n, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(err)
	}
	n.IP = ip
	return n
}

func TestConnected(t *testing.T) {
	upRunning := net.FlagUp | net.FlagRunning

	tests := []struct {
		name    string
		allowed []string
		ifaces  []Interface
		err     error
		want    bool
	}{
		{
			name: "loopback only",
			ifaces: []Interface{
				{Name: "lo", Flags: upRunning | net.FlagLoopback, Addrs: []net.Addr{ipNet("127.0.0.1/8")}},
			},
			want: false,
		},
		{
			name: "wifi with address",
			ifaces: []Interface{
				{Name: "wlan0", Flags: upRunning, Addrs: []net.Addr{ipNet("192.168.1.20/24")}},
			},
			want: true,
		},
		{
			name: "interface down",
			ifaces: []Interface{
				{Name: "eth0", Flags: 0, Addrs: []net.Addr{ipNet("10.0.0.2/24")}},
			},
			want: false,
		},
		{
			name: "up but not running",
			ifaces: []Interface{
				{Name: "eth0", Flags: net.FlagUp, Addrs: []net.Addr{ipNet("10.0.0.2/24")}},
			},
			want: false,
		},
		{
			name: "no addresses",
			ifaces: []Interface{
				{Name: "rmnet0", Flags: upRunning},
			},
			want: false,
		},
		{
			name:    "filtered out",
			allowed: []string{"wlan0"},
			ifaces: []Interface{
				{Name: "eth0", Flags: upRunning, Addrs: []net.Addr{ipNet("10.0.0.2/24")}},
			},
			want: false,
		},
		{
			name: "ipv6 link local",
			ifaces: []Interface{
				{Name: "wlan0", Flags: upRunning, Addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("fe80::1")}}},
			},
			want: true,
		},
		{
			name: "listing fails",
			err:  errors.New("permission denied"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChecker(tt.allowed, func() ([]Interface, error) { return tt.ifaces, tt.err })
			if got := c.Connected(); got != tt.want {
				t.Fatalf("Connected() = %v, want %v", got, tt.want)
			}
		})
	}
}
