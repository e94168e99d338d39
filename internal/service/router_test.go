package service_test

import (
	"testing"

	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/clarity-ai/clarity/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestRouteInput(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		kind       service.RouteKind
		capability domain.Capability
		argument   string
	}{
		{"imagine", "/imagine a red fox", service.RouteCommand, domain.CapabilityImagine, "a red fox"},
		{"analyze", "/analyze server keeps crashing", service.RouteCommand, domain.CapabilityAnalyze, "server keeps crashing"},
		{"explain", "/explain quantum entanglement", service.RouteCommand, domain.CapabilityExplain, "quantum entanglement"},
		{"summarize", "/summarize https://example.com/post", service.RouteCommand, domain.CapabilitySummarize, "https://example.com/post"},
		{"idea", "/idea birthday party themes", service.RouteCommand, domain.CapabilityIdea, "birthday party themes"},
		{"homework", "/homework what is 7*8?", service.RouteCommand, domain.CapabilityHomework, "what is 7*8?"},
		{"freeform", "hello there", service.RouteFreeform, "", ""},
		{"prefix without space", "/imagine", service.RouteFreeform, "", ""},
		{"prefix mid-string", "please /analyze this", service.RouteFreeform, "", ""},
		{"case sensitive", "/Imagine a fox", service.RouteFreeform, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := service.RouteInput(tt.input)
			assert.Equal(t, tt.kind, route.Kind)
			if tt.kind == service.RouteCommand {
				assert.Equal(t, tt.capability, route.Capability)
				assert.Equal(t, tt.argument, route.Argument)
			} else {
				assert.Equal(t, tt.input, route.Text)
			}
		})
	}
}
