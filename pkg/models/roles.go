package models

// Role names one of the three device characteristics the link uses
type Role int

const (
	// Status carries single-byte device status notifications
	Status Role = iota
	// Tx accepts framed command chunks from the host
	Tx
	// Rx indicates framed response chunks to the host
	Rx
)

func (r Role) String() string {
	return []string{"Status", "Tx", "Rx"}[r]
}
