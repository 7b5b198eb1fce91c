package coordination

import (
	"cmp"
	"fmt"
)

// ServerIdentity identifies a managed server instance. Two identities are the same server when
// host and server names match; the group name is carried for grouping results only.
type ServerIdentity struct {
	HostName        string `json:"host" yaml:"host"`
	ServerGroupName string `json:"server-group" yaml:"server-group"`
	ServerName      string `json:"server" yaml:"server"`
}

// Compare orders identities by host name, then server name.
func (s ServerIdentity) Compare(o ServerIdentity) int {
	if c := cmp.Compare(s.HostName, o.HostName); c != 0 {
		return c
	}

	return cmp.Compare(s.ServerName, o.ServerName)
}

// String returns host/server-group/server.
func (s ServerIdentity) String() string {
	return fmt.Sprintf("%s/%s/%s", s.HostName, s.ServerGroupName, s.ServerName)
}

type serverKey struct {
	host   string
	server string
}

func (s ServerIdentity) key() serverKey {
	return serverKey{host: s.HostName, server: s.ServerName}
}
