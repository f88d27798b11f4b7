package domain

import (
	"encoding/json"
	"fmt"
)

// CapabilityKind names one of the three revocable rights over an asset.
type CapabilityKind string

const (
	CapabilityMint   CapabilityKind = "mint"
	CapabilityFreeze CapabilityKind = "freeze"
	CapabilityUpdate CapabilityKind = "update"
)

// String returns the string representation of CapabilityKind.
func (k CapabilityKind) String() string {
	return string(k)
}

// Capability is either held by one address or permanently revoked.
// The only transition is Held -> Revoked.
type Capability struct {
	holder  Address
	revoked bool
}

// Held returns a capability held by owner.
func Held(owner Address) Capability {
	return Capability{holder: owner}
}

// Holder returns the holding address, or false once revoked.
func (c Capability) Holder() (Address, bool) {
	if c.revoked {
		return Address{}, false
	}
	return c.holder, true
}

// IsRevoked reports whether the capability has been revoked.
func (c Capability) IsRevoked() bool {
	return c.revoked
}

// IsHeldBy reports whether addr currently holds the capability.
func (c Capability) IsHeldBy(addr Address) bool {
	return !c.revoked && c.holder == addr
}

// Revoke returns the revoked form of c. Revoking twice is an error, never a no-op.
func (c Capability) Revoke() (Capability, error) {
	if c.revoked {
		return c, ErrAlreadyRevoked
	}
	return Capability{revoked: true}, nil
}

// String returns "held(<addr>)" or "revoked".
func (c Capability) String() string {
	if c.revoked {
		return "revoked"
	}
	return fmt.Sprintf("held(%s)", c.holder)
}

type capabilityJSON struct {
	State  string   `json:"state"`
	Holder *Address `json:"holder,omitempty"`
}

// MarshalJSON renders {"state":"held","holder":...} or {"state":"revoked"}.
func (c Capability) MarshalJSON() ([]byte, error) {
	if c.revoked {
		return json.Marshal(capabilityJSON{State: "revoked"})
	}
	h := c.holder
	return json.Marshal(capabilityJSON{State: "held", Holder: &h})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Capability) UnmarshalJSON(data []byte) error {
	var v capabilityJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.State {
	case "revoked":
		*c = Capability{revoked: true}
	case "held":
		if v.Holder == nil {
			return fmt.Errorf("held capability without holder")
		}
		*c = Held(*v.Holder)
	default:
		return fmt.Errorf("unknown capability state %q", v.State)
	}
	return nil
}

// Authorities groups the three capabilities of an issued asset.
type Authorities struct {
	Mint   Capability `json:"mint"`
	Freeze Capability `json:"freeze"`
	Update Capability `json:"update"`
}

// Get returns the capability of the given kind.
func (a Authorities) Get(kind CapabilityKind) Capability {
	switch kind {
	case CapabilityMint:
		return a.Mint
	case CapabilityFreeze:
		return a.Freeze
	default:
		return a.Update
	}
}

// Set replaces the capability of the given kind.
func (a *Authorities) Set(kind CapabilityKind, c Capability) {
	switch kind {
	case CapabilityMint:
		a.Mint = c
	case CapabilityFreeze:
		a.Freeze = c
	default:
		a.Update = c
	}
}
