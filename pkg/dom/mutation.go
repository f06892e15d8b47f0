package dom

import "golang.org/x/net/html"

// MutationKind is the type of a DOM mutation.
type MutationKind uint8

const (
	MutationSetText     MutationKind = 0x01 // Replace text content
	MutationSetAttr     MutationKind = 0x02 // Set/update attribute
	MutationRemoveAttr  MutationKind = 0x03 // Remove attribute
	MutationInsertNode  MutationKind = 0x04 // Insert child node
	MutationRemoveNode  MutationKind = 0x05 // Remove child node
	MutationReplaceNode MutationKind = 0x06 // Replace child node
)

// String returns the string representation of the MutationKind.
func (k MutationKind) String() string {
	switch k {
	case MutationSetText:
		return "SetText"
	case MutationSetAttr:
		return "SetAttr"
	case MutationRemoveAttr:
		return "RemoveAttr"
	case MutationInsertNode:
		return "InsertNode"
	case MutationRemoveNode:
		return "RemoveNode"
	case MutationReplaceNode:
		return "ReplaceNode"
	default:
		return "Unknown"
	}
}

// Mutation describes a single change applied to the tree.
type Mutation struct {
	Kind   MutationKind
	Target *html.Node // Element that changed (parent for node mutations)
	Key    string     // Attribute key (SetAttr/RemoveAttr)
	Value  string     // New attribute value or text
	Node   *html.Node // Inserted, removed or replacing node
}

// Observer receives mutations as they are applied.
type Observer func(Mutation)
