package scout

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
)

func TestDecodeTXT(t *testing.T) {
	txt := decodeTXT([]string{
		"id=r1",
		"pv=1",
		"loc=tcp/10.0.0.1:7447,tcp/10.0.0.2:7447",
		"malformed",
		"=novalue",
	})

	if txt["id"] != "r1" {
		t.Errorf("id = %q, want r1", txt["id"])
	}
	if txt["pv"] != "1" {
		t.Errorf("pv = %q, want 1", txt["pv"])
	}
	if len(txt) != 3 {
		t.Errorf("decoded %d keys, want 3 (malformed entries skipped)", len(txt))
	}
}

func TestEntryToRouter(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "router-1.local.",
		Port:     7447,
		Text:     []string{"id=r1", "pv=1", "loc=tcp/10.0.0.1:7447"},
		AddrIPv4: []net.IP{net.ParseIP("10.0.0.1")},
	}
	entry.Instance = "zlink-r1"

	r := entryToRouter(entry)
	if r == nil {
		t.Fatal("entryToRouter returned nil for a valid entry")
	}
	if r.ID != "r1" {
		t.Errorf("ID = %q, want r1", r.ID)
	}
	if len(r.Locators) != 1 || r.Locators[0] != "tcp/10.0.0.1:7447" {
		t.Errorf("Locators = %v", r.Locators)
	}
	if len(r.Addresses) != 1 || r.Addresses[0] != "10.0.0.1" {
		t.Errorf("Addresses = %v", r.Addresses)
	}
	if r.Port != 7447 {
		t.Errorf("Port = %d, want 7447", r.Port)
	}
}

func TestEntryToRouterMissingID(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		Port: 7447,
		Text: []string{"pv=1"},
	}

	if r := entryToRouter(entry); r != nil {
		t.Errorf("entryToRouter = %+v, want nil for missing id", r)
	}
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "fe80::1"})

	if len(merged) != 2 {
		t.Fatalf("merged %d addresses, want 2", len(merged))
	}
	if merged[1] != "fe80::1" {
		t.Errorf("merged[1] = %q, want fe80::1", merged[1])
	}
}

func TestLocatorPort(t *testing.T) {
	port, err := LocatorPort("tcp/192.168.1.1:7447")
	if err != nil {
		t.Fatalf("LocatorPort: %v", err)
	}
	if port != 7447 {
		t.Errorf("port = %d, want 7447", port)
	}

	if _, err := LocatorPort("tcp/192.168.1.1"); err == nil {
		t.Error("LocatorPort should fail without a port")
	}
	if _, err := LocatorPort("tcp/host:notaport"); err == nil {
		t.Error("LocatorPort should fail on a non-numeric port")
	}
}

func TestAdvertiseRequiresID(t *testing.T) {
	a := NewAdvertiser()
	defer a.Stop()

	if err := a.Advertise(AdvertiseConfig{}); err != ErrMissingID {
		t.Errorf("Advertise without id = %v, want ErrMissingID", err)
	}
}

func TestAdvertiseAfterStop(t *testing.T) {
	a := NewAdvertiser()
	a.Stop()

	if err := a.Advertise(AdvertiseConfig{ID: "r1"}); err != ErrStopped {
		t.Errorf("Advertise after Stop = %v, want ErrStopped", err)
	}
}
