package story

import (
	"log/slog"
	"sort"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
)

var (
	// ErrNodeNotFound is returned for unknown nodes and choices that lead nowhere.
	ErrNodeNotFound = errors.NewSentinel("story node not found")
	// ErrInvalidChoice is returned when the choice is not offered by the node.
	ErrInvalidChoice = errors.NewSentinel("invalid story choice")
)

// StartNodeID is where every story begins.
const StartNodeID = "start"

// Navigator walks the pre-authored story graph of a case.
type Navigator struct {
	nodes map[string]models.StoryNode
}

func NewNavigator(c *models.Case) *Navigator {
	return &Navigator{nodes: c.Story}
}

// Node returns the node with the given id. Its ID field is always set.
func (n *Navigator) Node(id string) (models.StoryNode, error) {
	node, ok := n.nodes[id]
	if !ok {
		return models.StoryNode{}, errors.Wrap(ErrNodeNotFound, "lookup node", //nolint:exhaustruct // zero value
			slog.String("node_id", id))
	}
	node.ID = id
	if len(node.Choices) == 0 && len(node.Next) > 0 {
		node.Choices = choices(node.Next)
	}
	return node, nil
}

// Choose follows choice from the node with the given id.
func (n *Navigator) Choose(id, choice string) (models.StoryNode, error) {
	from, err := n.Node(id)
	if err != nil {
		return models.StoryNode{}, err //nolint:exhaustruct // zero value
	}
	next, ok := from.Next[choice]
	if !ok {
		return models.StoryNode{}, errors.Wrap(ErrInvalidChoice, "follow choice", //nolint:exhaustruct // zero value
			slog.String("node_id", id), slog.String("choice", choice))
	}
	return n.Node(next)
}

func choices(next map[string]string) []string {
	labels := make([]string, 0, len(next))
	for label := range next {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
