package services

import (
	"fmt"
	"net"
)

// Port range scanned when the MCP HTTP transport is started without a port.
const (
	DefaultMCPPortStart = 8765
	DefaultMCPPortEnd   = 8785
)

// FindAvailablePort returns the first port in [startPort, endPort] that can be
// bound on the loopback interface.
func FindAvailablePort(startPort, endPort int) (int, error) {
	if startPort <= 0 || endPort < startPort {
		return 0, fmt.Errorf("invalid port range %d-%d", startPort, endPort)
	}
	for port := startPort; port <= endPort; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}
