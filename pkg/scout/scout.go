package scout

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// mDNS service parameters for router discovery.
const (
	// ServiceType is the mDNS service type routers announce under.
	ServiceType = "_zlink._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is the conventional router listen port.
	DefaultPort = 7447
)

// TXT record keys.
const (
	// TXTKeyID is the router's node id.
	TXTKeyID = "id"

	// TXTKeyProtocol is the announced protocol version.
	TXTKeyProtocol = "pv"

	// TXTKeyLocators is a comma-separated list of locators, e.g.
	// "tcp/192.168.1.1:7447".
	TXTKeyLocators = "loc"
)

// Scout package errors.
var (
	// ErrMissingID is returned when a router announcement lacks an id.
	ErrMissingID = errors.New("router announcement has no id")

	// ErrStopped is returned when advertising on a stopped advertiser.
	ErrStopped = errors.New("advertiser is stopped")
)

// Router describes one discovered router.
type Router struct {
	// ID is the router's node id.
	ID string

	// Protocol is the announced protocol version.
	Protocol string

	// Locators are the endpoints the router accepts connections on.
	Locators []string

	// Host is the announced hostname.
	Host string

	// Port is the announced port.
	Port uint16

	// Addresses contains resolved IP addresses.
	Addresses []string
}

// Browse searches for routers and streams them on the returned channel
// until ctx is done. Routers are deduplicated by id; addresses seen on
// multiple interfaces are merged into the already-emitted entry.
func Browse(ctx context.Context) (<-chan *Router, error) {
	out := make(chan *Router)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		seen := make(map[string]*Router)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				r := entryToRouter(entry)
				if r == nil {
					continue
				}

				if existing, found := seen[r.ID]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, r.Addresses)
					continue
				}
				seen[r.ID] = r
				select {
				case out <- r:
				case <-ctx.Done():
					return
				}

			case <-removed:
				// Interface-level removals are not tracked; a scouting
				// round is short-lived.

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed)
	}()

	return out, nil
}

// Find runs one bounded scouting round and returns every router
// discovered before ctx is done.
func Find(ctx context.Context) ([]*Router, error) {
	ch, err := Browse(ctx)
	if err != nil {
		return nil, err
	}

	var routers []*Router
	for r := range ch {
		routers = append(routers, r)
	}
	return routers, nil
}

// entryToRouter converts a zeroconf entry to a Router.
// Returns nil for announcements that fail to decode.
func entryToRouter(entry *zeroconf.ServiceEntry) *Router {
	txt := decodeTXT(entry.Text)

	id := txt[TXTKeyID]
	if id == "" {
		return nil
	}

	var locators []string
	if loc := txt[TXTKeyLocators]; loc != "" {
		locators = strings.Split(loc, ",")
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Router{
		ID:        id,
		Protocol:  txt[TXTKeyProtocol],
		Locators:  locators,
		Host:      entry.HostName,
		Port:      uint16(entry.Port),
		Addresses: addrs,
	}
}

// Advertiser announces a router over mDNS so peers can scout it.
type Advertiser struct {
	mu      sync.Mutex
	server  *zeroconf.Server
	stopped bool
}

// AdvertiseConfig describes the router announcement.
type AdvertiseConfig struct {
	// ID is the router's node id. Required.
	ID string

	// Protocol is the protocol version to announce.
	Protocol string

	// Locators are the endpoints the router accepts connections on.
	Locators []string

	// Port is the listen port; DefaultPort when zero.
	Port int

	// Interface restricts announcement to one network interface.
	// Empty means all interfaces.
	Interface string
}

// NewAdvertiser creates an advertiser.
func NewAdvertiser() *Advertiser {
	return &Advertiser{}
}

// Advertise starts announcing the router. A previous announcement is
// replaced.
func (a *Advertiser) Advertise(cfg AdvertiseConfig) error {
	if cfg.ID == "" {
		return ErrMissingID
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return ErrStopped
	}
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	txt := []string{
		TXTKeyID + "=" + cfg.ID,
	}
	if cfg.Protocol != "" {
		txt = append(txt, TXTKeyProtocol+"="+cfg.Protocol)
	}
	if len(cfg.Locators) > 0 {
		txt = append(txt, TXTKeyLocators+"="+strings.Join(cfg.Locators, ","))
	}

	instanceName := "zlink-" + cfg.ID

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		port,
		txt,
		interfacesFor(cfg.Interface),
	)
	if err != nil {
		return fmt.Errorf("register router service: %w", err)
	}

	a.server = server
	return nil
}

// Stop stops the announcement. The advertiser cannot be reused.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// interfacesFor resolves a named interface, or nil for all interfaces.
func interfacesFor(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// decodeTXT parses "key=value" TXT strings into a map.
func decodeTXT(strs []string) map[string]string {
	txt := make(map[string]string, len(strs))
	for _, s := range strs {
		key, value, found := strings.Cut(s, "=")
		if !found || key == "" {
			continue
		}
		txt[key] = value
	}
	return txt
}

// mergeAddresses appends addresses from next that are not already in
// existing.
func mergeAddresses(existing, next []string) []string {
	have := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		have[a] = struct{}{}
	}
	for _, a := range next {
		if _, ok := have[a]; !ok {
			existing = append(existing, a)
		}
	}
	return existing
}

// LocatorPort extracts the port from a locator such as
// "tcp/192.168.1.1:7447".
func LocatorPort(locator string) (uint16, error) {
	idx := strings.LastIndex(locator, ":")
	if idx < 0 || idx == len(locator)-1 {
		return 0, fmt.Errorf("locator %q has no port", locator)
	}
	port, err := strconv.ParseUint(locator[idx+1:], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("locator %q has an invalid port: %w", locator, err)
	}
	return uint16(port), nil
}
