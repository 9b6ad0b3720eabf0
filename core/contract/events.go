package contract

import "github.com/google/uuid"

// Dispatch events consumed by the external email-sending collaborator.
// They are emitted synchronously by the lifecycle service and delivered
// asynchronously; delivery failure never rolls back the state transition
// that triggered the event.

type ContractSigningRequested struct {
	EventID      uuid.UUID `json:"event_id"`
	ContractID   int       `json:"contract_id"`
	StudentEmail string    `json:"student_email"`
	Link         string    `json:"link"`
}

type ContractActivated struct {
	EventID     uuid.UUID `json:"event_id"`
	ContractID  int       `json:"contract_id"`
	StudentName string    `json:"student_name"`
}
