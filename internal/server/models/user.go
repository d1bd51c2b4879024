// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is the owner's account record. EncryptionKey is the symmetric key
// minted once at account creation; the storage engine treats it as an
// opaque byte string and never rotates it.
type User struct {
	ID            string
	Name          string
	Email         string
	EncryptionKey []byte
	CreatedAt     time.Time
}

// OwnerIdentity is the subset of the account record embedded in share
// links: enough to attribute the link, nothing secret.
type OwnerIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity returns the embeddable identity view of the user.
func (u *User) Identity() OwnerIdentity {
	return OwnerIdentity{ID: u.ID, Name: u.Name, Email: u.Email}
}
