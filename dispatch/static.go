package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/domain-coordinator/coordination"
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

var ErrHostUnreachable = errors.New("host unreachable")

// Topology is a canned domain: the hosts, their versions and the responses they give to any
// operation. It drives StaticClient, which replays it for dry runs and tests.
type Topology struct {
	LocalHost string     `yaml:"local-host"`
	Hosts     []HostSpec `yaml:"hosts"`
}

// HostSpec is one host of a Topology.
type HostSpec struct {
	Name             string       `yaml:"name"`
	Version          string       `yaml:"version"`
	Unreachable      bool         `yaml:"unreachable"`
	Response         value.Node   `yaml:"response"`
	Servers          []ServerSpec `yaml:"servers"`
	RolledBackGroups []string     `yaml:"rolled-back-groups"`
}

// ServerSpec is one server response of a HostSpec.
type ServerSpec struct {
	Group    string     `yaml:"group"`
	Name     string     `yaml:"name"`
	Response value.Node `yaml:"response"`
}

// LoadTopology reads a Topology from a YAML file.
func LoadTopology(path string) (Topology, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("failed to read topology file: %w", err)
	}

	return ParseTopology(b)
}

// ParseTopology decodes a Topology from YAML.
func ParseTopology(data []byte) (Topology, error) {
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Topology{}, fmt.Errorf("failed to unmarshal topology: %w", err)
	}
	if t.LocalHost == "" {
		return Topology{}, errors.New("topology: local-host is required")
	}

	return t, nil
}

// StaticClient is a HostClient answering from a Topology.
type StaticClient struct {
	hosts []HostInfo
	specs map[string]HostSpec
}

// NewStaticClient returns a client replaying t.
func NewStaticClient(t Topology) (*StaticClient, error) {
	c := &StaticClient{specs: make(map[string]HostSpec, len(t.Hosts))}
	for _, h := range t.Hosts {
		if h.Name == "" {
			return nil, errors.New("topology: host name is required")
		}
		if _, dup := c.specs[h.Name]; dup {
			return nil, fmt.Errorf("topology: duplicate host %q", h.Name)
		}
		info := HostInfo{Name: h.Name}
		if h.Version != "" {
			v, err := semver.NewVersion(h.Version)
			if err != nil {
				return nil, fmt.Errorf("topology: host %s version: %w", h.Name, err)
			}
			info.ManagementVersion = v
		}
		c.hosts = append(c.hosts, info)
		c.specs[h.Name] = h
	}

	return c, nil
}

// Hosts implements HostClient.
func (c *StaticClient) Hosts(_ context.Context) ([]HostInfo, error) {
	return append([]HostInfo(nil), c.hosts...), nil
}

// Execute implements HostClient. Unreachable hosts fail on every attempt.
func (c *StaticClient) Execute(ctx context.Context, host HostInfo, _ operation.Descriptor) (HostResponse, error) {
	if err := ctx.Err(); err != nil {
		return HostResponse{}, err
	}
	spec, ok := c.specs[host.Name]
	if !ok {
		return HostResponse{}, NewUnrecoverableError(fmt.Errorf("%w: %s", ErrUnknownHost, host.Name))
	}
	if spec.Unreachable {
		return HostResponse{}, fmt.Errorf("%w: %s", ErrHostUnreachable, host.Name)
	}

	resp := HostResponse{
		Envelope:         spec.Response,
		RolledBackGroups: spec.RolledBackGroups,
	}
	for _, s := range spec.Servers {
		resp.Servers = append(resp.Servers, ServerResponse{
			Identity: coordination.ServerIdentity{HostName: host.Name, ServerGroupName: s.Group, ServerName: s.Name},
			Response: s.Response,
		})
	}

	return resp, nil
}
