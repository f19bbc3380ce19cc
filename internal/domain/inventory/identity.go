package inventory

import "strings"

// IdentityKind is how many IMEIs a mobile line carries.
type IdentityKind string

const (
	NoImei  IdentityKind = "none"
	OneImei IdentityKind = "one"
	TwoImei IdentityKind = "two"
)

// IMEISlot names one of the two IMEI columns.
type IMEISlot int

const (
	Slot1 IMEISlot = 1
	Slot2 IMEISlot = 2
)

// Identity holds the IMEIs of a mobile line, keeping each value in its slot.
// The zero value is NoImei.
type Identity struct {
	imei1 string
	imei2 string
}

// NewIdentity trims both values; blank values leave their slot empty.
func NewIdentity(imei1, imei2 string) Identity {
	return Identity{imei1: strings.TrimSpace(imei1), imei2: strings.TrimSpace(imei2)}
}

// Kind reports the variant.
func (i Identity) Kind() IdentityKind {
	switch {
	case i.imei1 != "" && i.imei2 != "":
		return TwoImei
	case i.imei1 != "" || i.imei2 != "":
		return OneImei
	default:
		return NoImei
	}
}

// Get returns the value stored in slot, or nil.
func (i Identity) Get(slot IMEISlot) *string {
	v := i.imei1
	if slot == Slot2 {
		v = i.imei2
	}
	if v == "" {
		return nil
	}
	return &v
}

// Without returns a copy with slot cleared.
func (i Identity) Without(slot IMEISlot) Identity {
	if slot == Slot2 {
		i.imei2 = ""
	} else {
		i.imei1 = ""
	}
	return i
}

// Demote drops both IMEIs.
func (i Identity) Demote() Identity {
	return Identity{}
}
