// Package document defines the desired-state YAML document, its loader
// and semantic validator, and the serializer that renders a live
// snapshot back into document form. The validator is the gatekeeper:
// the reconciler only ever sees snapshots this package has built and
// checked.
package document

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the top-level desired-state configuration.
type Document struct {
	Interfaces    map[string]Interface    `yaml:"interfaces,omitempty"`
	Loopbacks     map[string]Loopback     `yaml:"loopbacks,omitempty"`
	BondEthernets map[string]Bond         `yaml:"bondethernets,omitempty"`
	BridgeDomains map[string]BridgeDomain `yaml:"bridgedomains,omitempty"`
	VXLANTunnels  map[string]VXLANTunnel  `yaml:"vxlan_tunnels,omitempty"`
}

// Interface configures a physical dataplane interface.
type Interface struct {
	MTU           int                  `yaml:"mtu,omitempty"`
	State         string               `yaml:"state,omitempty"`
	Addresses     []string             `yaml:"addresses,omitempty"`
	LCP           string               `yaml:"lcp,omitempty"`
	SubInterfaces map[int]SubInterface `yaml:"sub-interfaces,omitempty"`
}

// SubInterface configures one VLAN sub-interface of an interface.
type SubInterface struct {
	MTU           int            `yaml:"mtu,omitempty"`
	State         string         `yaml:"state,omitempty"`
	Addresses     []string       `yaml:"addresses,omitempty"`
	LCP           string         `yaml:"lcp,omitempty"`
	Encapsulation *Encapsulation `yaml:"encapsulation,omitempty"`
}

// Encapsulation selects the VLAN tagging of a sub-interface. When
// omitted, the sub-interface defaults to dot1q <subid> exact-match.
type Encapsulation struct {
	Dot1Q      int  `yaml:"dot1q,omitempty"`
	Dot1AD     int  `yaml:"dot1ad,omitempty"`
	InnerDot1Q int  `yaml:"inner-dot1q,omitempty"`
	ExactMatch bool `yaml:"exact-match,omitempty"`
}

// Loopback configures a loopback interface (loop<N>).
type Loopback struct {
	MTU       int      `yaml:"mtu,omitempty"`
	State     string   `yaml:"state,omitempty"`
	Addresses []string `yaml:"addresses,omitempty"`
	LCP       string   `yaml:"lcp,omitempty"`
}

// Bond configures a link aggregate (BondEthernet<N>).
type Bond struct {
	Mode        string   `yaml:"mode,omitempty"`
	LoadBalance string   `yaml:"load-balance,omitempty"`
	Interfaces  []string `yaml:"interfaces,omitempty"`
	MTU         int      `yaml:"mtu,omitempty"`
	State       string   `yaml:"state,omitempty"`
	Addresses   []string `yaml:"addresses,omitempty"`
	LCP         string   `yaml:"lcp,omitempty"`
}

// BridgeDomain configures an L2 bridge domain (bd<N>) over its member
// interfaces.
type BridgeDomain struct {
	Interfaces []string `yaml:"interfaces,omitempty"`
}

// VXLANTunnel configures a VXLAN tunnel (vxlan_tunnel<N>).
type VXLANTunnel struct {
	Local  string `yaml:"local"`
	Remote string `yaml:"remote"`
	VNI    int    `yaml:"vni"`
}

// Parse decodes a document from YAML. Unknown fields are rejected so a
// typo in the document surfaces as an error rather than silently
// configuring nothing.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// Load reads and decodes a document from a file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Write serialises the document as YAML.
func (d *Document) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return enc.Close()
}
