// Package tree implements the recursive lookup and removal algorithms over
// an owner's hierarchical file tree. Both operations walk the node slice
// depth-first in declaration order and rely on the tree-wide uniqueness of
// node ids. They perform no I/O other than the blob erase incidental to
// RemoveByID; persisting the updated tree is the caller's job.
package tree

import (
	"context"

	"github.com/avolkov/shareit/internal/logging"
	"github.com/avolkov/shareit/internal/server/models"
)

// Eraser deletes the durable bytes behind a file node. RemoveByID treats
// erase failures as best-effort: the dominant case is "already absent", and
// removing the logical entry must never be blocked by the physical layer.
type Eraser interface {
	Erase(ctx context.Context, location string) error
}

// FindByID searches the tree depth-first, pre-order: at each element a
// non-folder node is tested for an id match before any folder is descended
// into, and the first match wins. Folders without children are skipped.
// Returns nil when no node carries the id.
func FindByID(nodes []*models.FileNode, id string) *models.FileNode {
	for _, node := range nodes {
		if !node.IsFolder() {
			if node.ID == id {
				return node
			}
		}

		if node.IsFolder() && len(node.Children) > 0 {
			if found := FindByID(node.Children, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// RemoveByID removes the first non-folder node matching id at each level
// that contains one, erasing its backing blob best-effort, and returns the
// updated slice for the caller to persist.
//
// The traversal matches FindByID's order, with one deliberate quirk: a
// removal stops the scan of its own level,
// but recursive calls into folders do not report success upward, so every
// folder subtree is still visited. With unique ids (the tree invariant)
// at most one node is removed; TestRemoveByID_DuplicateIDsAcrossLevels
// documents what happens when that invariant is violated.
func RemoveByID(ctx context.Context, nodes []*models.FileNode, id string, eraser Eraser, log logging.Logger) []*models.FileNode {
	for i := 0; i < len(nodes); i++ {
		node := nodes[i]

		if !node.IsFolder() && node.ID == id {
			if err := eraser.Erase(ctx, node.Location); err != nil {
				log.Warn(ctx, "blob erase failed during removal", "location", node.Location, "error", err)
			}
			nodes = append(nodes[:i], nodes[i+1:]...)
			break
		}

		if node.IsFolder() && len(node.Children) > 0 {
			node.Children = RemoveByID(ctx, node.Children, id, eraser, log)
		}
	}

	return nodes
}
