package guard

import (
	"fmt"
	"net"
	"time"
)

// Fingerprint binds an authenticated session to the client that created it.
// It is compared wholesale and re-bound on every fresh login, never partially
// updated.
type Fingerprint struct {
	IP      string    `json:"ip"`
	Agent   string    `json:"ua"`
	BoundAt time.Time `json:"bound_at"`
}

// FingerprintGuard detects session takeover by comparing the bound
// fingerprint against the current request.
type FingerprintGuard struct {
	flags Flags
	// subnetPrefixLen is the IPv4 prefix two addresses must share to be
	// treated as the same client. Policy knob, not an algorithmic necessity.
	subnetPrefixLen int
	now             func() time.Time
}

// NewFingerprintGuard builds the guard. A non-positive prefix selects /24.
func NewFingerprintGuard(flags Flags, subnetPrefixLen int) *FingerprintGuard {
	if subnetPrefixLen <= 0 || subnetPrefixLen > 32 {
		subnetPrefixLen = 24
	}
	return &FingerprintGuard{flags: flags, subnetPrefixLen: subnetPrefixLen, now: time.Now}
}

// Bind returns a fresh fingerprint for the client, overwriting any prior
// binding the caller holds.
func (g *FingerprintGuard) Bind(ip, agent string) Fingerprint {
	return Fingerprint{IP: ip, Agent: Truncate(agent, 500), BoundAt: g.now()}
}

// Check compares the bound fingerprint against the current client. A nil
// binding is first-seen: the guard silently binds and reports no violation.
// The returned fingerprint is the binding the session should carry forward;
// the reason string is empty unless a violation was detected.
//
// An agent mismatch only counts when the bound agent was non-empty. An IP
// mismatch is tolerated when both addresses fall in the same subnet per
// SameSubnet. When the guard is disabled via flags it never flags.
func (g *FingerprintGuard) Check(bound *Fingerprint, ipNow, agentNow string) (Fingerprint, string) {
	if g.flags != nil && !(g.flags.DefenseEnabled() && g.flags.SessionGuardEnabled()) {
		if bound != nil {
			return *bound, ""
		}
		return g.Bind(ipNow, agentNow), ""
	}

	if bound == nil || (bound.IP == "" && bound.Agent == "") {
		return g.Bind(ipNow, agentNow), ""
	}

	agentNow = Truncate(agentNow, 500)
	agentChanged := bound.Agent != "" && bound.Agent != agentNow
	ipChanged := bound.IP != "" && bound.IP != ipNow && !g.SameSubnet(bound.IP, ipNow)

	if agentChanged || ipChanged {
		reason := fmt.Sprintf("session fingerprint changed ip:%s->%s ua_changed:%t", bound.IP, ipNow, agentChanged)
		return *bound, reason
	}

	return *bound, ""
}

// SameSubnet reports whether two addresses are judged equivalent for session
// continuity: two loopbacks always are; two IPv4 addresses are when they
// share the configured prefix; anything else, including addresses of
// different families or unparseable input, falls back to literal equality so
// the guard stays protective.
func (g *FingerprintGuard) SameSubnet(ip1, ip2 string) bool {
	a1 := net.ParseIP(ip1)
	a2 := net.ParseIP(ip2)
	if a1 == nil || a2 == nil {
		return ip1 == ip2
	}
	if a1.IsLoopback() && a2.IsLoopback() {
		return true
	}

	v1, v2 := a1.To4(), a2.To4()
	if (v1 == nil) != (v2 == nil) {
		return false
	}
	if v1 != nil {
		mask := net.CIDRMask(g.subnetPrefixLen, 32)
		return v1.Mask(mask).Equal(v2.Mask(mask))
	}

	return ip1 == ip2
}
