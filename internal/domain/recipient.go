package domain

// GuestOrigin records which side of the wedding invited a guest.
type GuestOrigin string

const (
	OriginGroom GuestOrigin = "groom"
	OriginBride GuestOrigin = "bride"
	OriginOther GuestOrigin = "other"
)

// Recipient is the dispatch-time view of a guest. It is an input to the
// pipeline, not persisted by it.
type Recipient struct {
	ID          int64       `json:"id" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Code        string      `json:"code" validate:"required"`
	PhoneNumber string      `json:"phoneNumber" validate:"required"`
	Origin      GuestOrigin `json:"origin" validate:"required,oneof=groom bride other"`
}

// SessionFor maps a guest's origin to the sender account that must
// transmit to them. Bride-side guests get the bride session, everyone
// else (groom side, shared friends, vendors) the groom session.
func SessionFor(origin GuestOrigin) SessionType {
	if origin == OriginBride {
		return SessionBride
	}
	return SessionGroom
}
