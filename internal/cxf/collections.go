package cxf

import (
	"github.com/nvinuesa/go-cxf"

	"github.com/nvinuesa/bw2kp/internal/model"
)

// collectionNode represents a node in the collection tree.
type collectionNode struct {
	name     string
	items    []string // item IDs
	order    []string // child names in first-seen order
	children map[string]*collectionNode
}

func newCollectionNode(name string) *collectionNode {
	return &collectionNode{
		name:     name,
		children: make(map[string]*collectionNode),
	}
}

// BuildCollections creates the CXF Collection hierarchy from group paths.
// ids holds the item ID of each placement. Entries in the root group
// belong to no collection.
func BuildCollections(placements []model.Placement, ids []string) []cxf.Collection {
	root := newCollectionNode("")

	for i := range placements {
		if len(placements[i].GroupPath) == 0 {
			continue
		}
		addToTree(root, placements[i].GroupPath, ids[i])
	}

	return treeToCollections(root)
}

// addToTree adds an item ID to the tree at the specified path.
func addToTree(node *collectionNode, parts []string, id string) {
	for _, part := range parts {
		child, ok := node.children[part]
		if !ok {
			child = newCollectionNode(part)
			node.children[part] = child
			node.order = append(node.order, part)
		}
		node = child
	}
	node.items = append(node.items, id)
}

// treeToCollections converts the children of node to CXF collections.
func treeToCollections(node *collectionNode) []cxf.Collection {
	if len(node.order) == 0 {
		return nil
	}

	collections := make([]cxf.Collection, 0, len(node.order))
	for _, name := range node.order {
		collections = append(collections, nodeToCollection(node.children[name]))
	}
	return collections
}

// nodeToCollection converts a tree node to a CXF Collection.
func nodeToCollection(node *collectionNode) cxf.Collection {
	linkedItems := make([]cxf.LinkedItem, len(node.items))
	for i, itemID := range node.items {
		linkedItems[i] = cxf.LinkedItem{
			Item: itemID,
		}
	}

	return cxf.Collection{
		ID:             generateBase64URLID(),
		Title:          node.name,
		Items:          linkedItems,
		SubCollections: treeToCollections(node),
	}
}
