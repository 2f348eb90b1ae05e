package graph

import "math/rand/v2"

// RandomPath walks the chart from its first in-degree-0 node (or the first
// node when every node has an incoming edge), choosing a random outgoing
// neighbour at each step, and returns the visited labels. The walk stops at a
// dead end or when it would revisit a node. Dangling edges are skipped.
func RandomPath(c Chart, rng *rand.Rand) []string {
	if len(c.Nodes) == 0 {
		return nil
	}

	incoming := make(map[string]int, len(c.Nodes))
	for _, n := range c.Nodes {
		incoming[n.ID] = 0
	}
	for _, e := range c.Edges {
		if _, ok := incoming[e.To]; ok {
			incoming[e.To]++
		}
	}

	current := -1
	for i, n := range c.Nodes {
		if incoming[n.ID] == 0 {
			current = i
			break
		}
	}
	if current < 0 {
		current = 0
	}

	visited := make(map[string]bool)
	var labels []string
	for current >= 0 && !visited[c.Nodes[current].ID] {
		node := c.Nodes[current]
		visited[node.ID] = true
		labels = append(labels, node.Label)

		var options []int
		for _, e := range c.Edges {
			if e.From != node.ID {
				continue
			}
			if i := c.NodeIndex(e.To); i >= 0 {
				options = append(options, i)
			}
		}
		if len(options) == 0 {
			break
		}
		current = options[rng.IntN(len(options))]
	}
	return labels
}
