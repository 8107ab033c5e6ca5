package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintGuard_FirstSeenBindsSilently(t *testing.T) {
	g := NewFingerprintGuard(allOn(), 24)

	fp, violation := g.Check(nil, "10.0.0.5", "UA-A")
	assert.Empty(t, violation)
	assert.Equal(t, "10.0.0.5", fp.IP)
	assert.Equal(t, "UA-A", fp.Agent)
	assert.False(t, fp.BoundAt.IsZero())
}

func TestFingerprintGuard_AgentMismatch(t *testing.T) {
	g := NewFingerprintGuard(allOn(), 24)

	bound := g.Bind("10.0.0.5", "UA-A")
	_, violation := g.Check(&bound, "10.0.0.5", "UA-B")
	require.NotEmpty(t, violation)
	assert.Contains(t, violation, "ua_changed:true")
}

func TestFingerprintGuard_EmptyBoundAgentTolerated(t *testing.T) {
	g := NewFingerprintGuard(allOn(), 24)

	bound := g.Bind("10.0.0.5", "")
	_, violation := g.Check(&bound, "10.0.0.5", "UA-B")
	assert.Empty(t, violation)
}

func TestFingerprintGuard_SameSubnetTolerated(t *testing.T) {
	g := NewFingerprintGuard(allOn(), 24)

	bound := g.Bind("10.0.0.5", "UA-A")
	_, violation := g.Check(&bound, "10.0.0.6", "UA-A")
	assert.Empty(t, violation)
}

func TestFingerprintGuard_DifferentSubnetViolates(t *testing.T) {
	g := NewFingerprintGuard(allOn(), 24)

	bound := g.Bind("10.0.0.5", "UA-A")
	_, violation := g.Check(&bound, "10.0.1.5", "UA-A")
	assert.NotEmpty(t, violation)
}

func TestFingerprintGuard_DisabledNeverFlags(t *testing.T) {
	flags := allOn()
	flags.sessionGuard = false
	g := NewFingerprintGuard(flags, 24)

	bound := g.Bind("10.0.0.5", "UA-A")
	_, violation := g.Check(&bound, "192.0.2.77", "UA-B")
	assert.Empty(t, violation)
}

func TestSameSubnet(t *testing.T) {
	g := NewFingerprintGuard(allOn(), 24)

	cases := []struct {
		name   string
		a, b   string
		expect bool
	}{
		{"loopbacks always equivalent", "127.0.0.1", "::1", true},
		{"same /24", "192.168.1.10", "192.168.1.250", true},
		{"different /24", "192.168.1.10", "192.168.2.10", false},
		{"mixed families", "192.168.1.10", "2001:db8::1", false},
		{"identical v6", "2001:db8::1", "2001:db8::1", true},
		{"different v6", "2001:db8::1", "2001:db8::2", false},
		{"unparseable falls back to literal equality", "not-an-ip", "not-an-ip", true},
		{"unparseable mismatch fails closed", "not-an-ip", "also-not", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expect, g.SameSubnet(tc.a, tc.b), tc.name)
	}
}

func TestSameSubnet_WiderPrefix(t *testing.T) {
	g := NewFingerprintGuard(allOn(), 16)
	assert.True(t, g.SameSubnet("192.168.1.10", "192.168.200.10"))
	assert.False(t, g.SameSubnet("192.168.1.10", "192.169.1.10"))
}
