package models

import "time"

// FolderType is the Type value marking a node as a folder. Any other Type
// value is a file's MIME type.
const FolderType = "folder"

// FileNode is one node of an owner's file tree: either a file or a folder,
// tagged by Type. IDs are unique across the owner's whole tree, not just
// between siblings. Children is only populated for folders, is exclusively
// owned by the folder, and preserves insertion order. The whole tree is
// persisted as a single JSON document per owner.
type FileNode struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Children  []*FileNode `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder.
func (n *FileNode) IsFolder() bool {
	return n.Type == FolderType
}

// Clone returns a deep copy of the node and its subtree. Share links store
// clones so later mutations of the live tree never reach the link.
func (n *FileNode) Clone() *FileNode {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*FileNode, len(n.Children))
		for i, child := range n.Children {
			cp.Children[i] = child.Clone()
		}
	}
	return &cp
}
