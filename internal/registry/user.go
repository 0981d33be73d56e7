// Package registry implements the hardened user-registry access layer.
// The Gateway is the only component that touches the underlying store; it
// guarantees that every User it hands out is structurally complete and
// that writes to the same identifier never interleave.
package registry

import "time"

// Contact is an address-book entry attached to a user.
type Contact struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Transaction is a ledger entry attached to a user.
type Transaction struct {
	ID     string    `json:"id"`
	Amount int64     `json:"amount"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

// Incident is a recorded problem report attached to a user.
type Incident struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// SolvedBlock records a block the user solved.
type SolvedBlock struct {
	Height int64     `json:"height"`
	Hash   string    `json:"hash"`
	At     time.Time `json:"at"`
}

// OwnedAsset records an asset position held by the user.
type OwnedAsset struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// User is the identity record kept in the registry. The optional
// substructures default to empty ordered sequences; the Gateway never
// returns a User with any of them nil.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`

	Contacts     []Contact     `json:"contacts"`
	Transactions []Transaction `json:"transactions"`
	Incidents    []Incident    `json:"incidents"`
	SolvedBlocks []SolvedBlock `json:"solved_blocks"`
	OwnedAssets  []OwnedAsset  `json:"owned_assets"`
}

// Repair fills any absent optional substructure with an empty sequence
// and reports whether anything had to be filled.
func (u *User) Repair() bool {
	repaired := false
	if u.Contacts == nil {
		u.Contacts = []Contact{}
		repaired = true
	}
	if u.Transactions == nil {
		u.Transactions = []Transaction{}
		repaired = true
	}
	if u.Incidents == nil {
		u.Incidents = []Incident{}
		repaired = true
	}
	if u.SolvedBlocks == nil {
		u.SolvedBlocks = []SolvedBlock{}
		repaired = true
	}
	if u.OwnedAssets == nil {
		u.OwnedAssets = []OwnedAsset{}
		repaired = true
	}
	return repaired
}

// PublicView is the caller-facing projection of a User. It never carries
// the credential digest.
type PublicView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`

	Contacts     []Contact     `json:"contacts"`
	Transactions []Transaction `json:"transactions"`
	Incidents    []Incident    `json:"incidents"`
	SolvedBlocks []SolvedBlock `json:"solved_blocks"`
	OwnedAssets  []OwnedAsset  `json:"owned_assets"`
}

// PublicView projects the user for external callers.
func (u *User) PublicView() *PublicView {
	return &PublicView{
		ID:           u.ID,
		Username:     u.Username,
		CreatedAt:    u.CreatedAt,
		Contacts:     u.Contacts,
		Transactions: u.Transactions,
		Incidents:    u.Incidents,
		SolvedBlocks: u.SolvedBlocks,
		OwnedAssets:  u.OwnedAssets,
	}
}

// ValidateStructure is the pure structural predicate used before every
// write and by the repair path. It checks required identity fields only
// and mutates nothing.
func ValidateStructure(u *User) bool {
	if u == nil {
		return false
	}
	return u.ID != "" && u.Username != "" && u.Digest != ""
}
