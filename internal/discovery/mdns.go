// ABOUTME: mDNS service discovery for HippoLingua servers
// ABOUTME: Advertises the HTTP API on the LAN and browses for other instances
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/mdns"

	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/internal/version"
)

// ServiceType is the DNS-SD service type of the HTTP API
const ServiceType = "_hippolingua._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
}

// Manager handles mDNS operations
type Manager struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
}

// ServerInfo describes a discovered server
type ServerInfo struct {
	Name    string
	Host    string
	Port    int
	Version string
}

// URL returns the base URL of the server's HTTP API
func (s ServerInfo) URL() string {
	return fmt.Sprintf("http://%s/api", net.JoinHostPort(s.Host, fmt.Sprint(s.Port)))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// txtRecords returns the TXT records published with the service
func (m *Manager) txtRecords() []string {
	return []string{
		"path=/api",
		"version=" + version.Version,
		"product=" + version.Product,
	}
}

// Advertise advertises the server via mDNS until Stop is called
func (m *Manager) Advertise() error {
	if m.config.Port <= 0 {
		return fmt.Errorf("invalid port for advertisement: %d", m.config.Port)
	}

	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	logging.L().Info("advertising mDNS service",
		slog.String("name", m.config.ServiceName),
		slog.Int("port", m.config.Port),
		slog.String("type", ServiceType))

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse queries the LAN once and returns the servers that answered within timeout
func Browse(ctx context.Context, timeout time.Duration) ([]ServerInfo, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	var servers []ServerInfo

	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			servers = append(servers, entryInfo(entry))
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Timeout = timeout
	params.Entries = entries
	params.DisableIPv6 = true

	err := mdns.QueryContext(ctx, params)
	close(entries)
	<-done

	if err != nil {
		return nil, fmt.Errorf("mdns query failed: %w", err)
	}
	return servers, nil
}

func entryInfo(entry *mdns.ServiceEntry) ServerInfo {
	info := ServerInfo{
		Name: strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Port: entry.Port,
	}
	if entry.AddrV4 != nil {
		info.Host = entry.AddrV4.String()
	} else {
		info.Host = entry.Host
	}
	for _, field := range entry.InfoFields {
		if v, ok := strings.CutPrefix(field, "version="); ok {
			info.Version = v
		}
	}
	return info
}

// Stop stops advertising
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
