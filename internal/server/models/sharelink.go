package models

import "time"

// ShareLink grants anyone holding Token read access to one file. File is a
// snapshot copy taken at share time, not a live reference: renaming or
// moving the live node afterwards does not change the link, and deleting
// the live node leaves the snapshot pointing at bytes that no longer exist.
type ShareLink struct {
	Token     string
	File      *FileNode
	Owner     OwnerIdentity
	CreatedAt time.Time
}
