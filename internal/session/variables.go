package session

import (
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vburojevic/cfdbg/internal/domain"
	"github.com/vburojevic/cfdbg/internal/transport"
)

// variableCache holds the forest returned by the latest root fetch
type variableCache struct {
	roots []domain.VariableNode
}

func (v *variableCache) replace(roots []domain.VariableNode) {
	v.roots = roots
}

// find does a depth-first, pre-order search for index
func (v *variableCache) find(index int) (domain.VariableNode, bool) {
	return findVariable(v.roots, index)
}

func findVariable(nodes []domain.VariableNode, index int) (domain.VariableNode, bool) {
	for _, n := range nodes {
		if n.Index == index {
			return n, true
		}
		if child, ok := findVariable(n.Children, index); ok {
			return child, true
		}
	}
	return domain.VariableNode{}, false
}

// Variables returns variables through fn.
//
// A positive index returns every child of that node from the cached forest
// (start and count are ignored) or an empty slice when it is unknown; the
// server is not contacted. Index 0 always refetches the whole forest,
// replaces the cache and returns the [start, start+count) page of its top
// level. fn is not called if the fetch fails.
func (c *Controller) Variables(index, start, count int, fn func([]domain.VariableNode)) {
	c.loop.post(func() {
		if index > domain.RootVariableIndex {
			node, ok := c.variables.find(index)
			if !ok || node.Children == nil {
				fn([]domain.VariableNode{})
				return
			}
			fn(node.Children)
			return
		}

		c.request(transport.PathStackValues, func(res gjson.Result, err error) {
			if err != nil {
				c.logger.Debug("variables fetch failed", zap.Error(err))
				return
			}
			c.variables.replace(parseVariables(res))
			fn(page(c.variables.roots, start, count))
		})
	})
}

// parseVariables drops any node with a missing or mistyped field, without
// looking at its children
func parseVariables(res gjson.Result) []domain.VariableNode {
	nodes := []domain.VariableNode{}
	if !res.IsArray() {
		return nodes
	}
	for _, v := range res.Array() {
		name := v.Get("name")
		typ := v.Get("type")
		value := v.Get("value")
		index := v.Get("index")
		children := v.Get("children")
		if name.Type != gjson.String ||
			typ.Type != gjson.String ||
			value.Type != gjson.String ||
			index.Type != gjson.Number ||
			!children.IsArray() {
			continue
		}
		nodes = append(nodes, domain.VariableNode{
			Name:     name.Str,
			Type:     typ.Str,
			Value:    value.Str,
			Index:    int(index.Int()),
			Children: parseVariables(children),
		})
	}
	return nodes
}

// page returns items[start:start+count] clamped to the slice bounds
func page[T any](items []T, start, count int) []T {
	start = min(max(start, 0), len(items))
	end := len(items)
	if count < end-start {
		end = start + max(count, 0)
	}
	out := lo.Slice(items, start, end)
	if out == nil {
		return []T{}
	}
	return out
}
