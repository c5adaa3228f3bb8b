package resident

// ConsentState is the tri-state WhatsApp opt-in flag on a resident.
// Declined is sticky: it suppresses all non-critical dispatch for the
// resident until the resident changes it through the consent handshake.
type ConsentState string

const (
	ConsentUnset    ConsentState = "unset"
	ConsentAccepted ConsentState = "accepted"
	ConsentDeclined ConsentState = "declined"
)

// Resident is the read-only projection of a resident this subsystem needs.
// The resident record itself is owned by the external entity store.
type Resident struct {
	ID            int
	CondominiumID int
	Name          string
	Phone         string
	Consent       ConsentState
}

// Repository reads resident data from the shared entity store and writes
// back exactly one attribute: the consent state, on webhook responses.
type Repository interface {
	GetByID(id int) (*Resident, error)
	GetByPhone(phone string) (*Resident, error)
	CountPendingPackages(residentID int) (int, error)
	UpdateConsent(residentID int, state ConsentState) error
}
