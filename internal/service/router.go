package service

import (
	"strings"

	"github.com/clarity-ai/clarity/internal/domain"
)

type RouteKind string

const (
	RouteFreeform RouteKind = "freeform"
	RouteCommand  RouteKind = "command"
)

// Route is the tagged result of command dispatch: either a recognized
// capability with its argument, or the untouched freeform text.
type Route struct {
	Kind       RouteKind
	Capability domain.Capability
	Argument   string
	Text       string
}

// commandTable is evaluated in order; the first matching prefix wins, which
// makes precedence explicit. None of the prefixes currently overlap.
var commandTable = []struct {
	prefix     string
	capability domain.Capability
}{
	{"/imagine ", domain.CapabilityImagine},
	{"/analyze ", domain.CapabilityAnalyze},
	{"/explain ", domain.CapabilityExplain},
	{"/summarize ", domain.CapabilitySummarize},
	{"/idea ", domain.CapabilityIdea},
	{"/homework ", domain.CapabilityHomework},
}

// RouteInput matches the raw user input against the command table.
// Prefixes are case-sensitive: a single leading slash token followed by one
// space.
func RouteInput(input string) Route {
	for _, cmd := range commandTable {
		if strings.HasPrefix(input, cmd.prefix) {
			return Route{
				Kind:       RouteCommand,
				Capability: cmd.capability,
				Argument:   strings.TrimPrefix(input, cmd.prefix),
			}
		}
	}
	return Route{Kind: RouteFreeform, Text: input}
}
