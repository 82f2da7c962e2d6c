package stereotype

import (
	"reflect"
	"strings"
	"testing"
)

type billingService struct{}
type relayWorker struct{}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	billing := reflect.TypeOf(billingService{})
	relay := reflect.TypeOf(relayWorker{})

	tests := []struct {
		name    string
		typ     reflect.Type
		role    Role
		label   string
		wantErr string
	}{
		{"application service", billing, ApplicationService, "billing", ""},
		{"second role on same type", billing, Orchestrator, "", ""},
		{"worker", relay, Worker, "", ""},
		{"duplicate role", billing, ApplicationService, "again", "already registered"},
		{"unknown role", relay, Role("Repository"), "", "unknown role"},
		{"nil type", nil, Worker, "", "type is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.typ, tt.role, tt.label)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if !r.Has(billing, Orchestrator) || r.Has(relay, ApplicationService) {
		t.Error("Has reports wrong roles")
	}
	if got := len(r.RolesOf(billing)); got != 2 {
		t.Errorf("expected 2 roles for billing, got %d", got)
	}

	components := r.Components()
	if len(components) != 3 || components[0].Role != ApplicationService || components[2].Role != Worker {
		t.Errorf("unexpected component order %v", components)
	}
	if got := components[0].String(); got != "ApplicationService(stereotype.billingService, name=billing)" {
		t.Errorf("unexpected String() %q", got)
	}
	t.Log("✓ stereotype registry passed")
}

func TestDefaultRegistry(t *testing.T) {
	type specFactory struct{}
	MustRegister[specFactory](SpecificationFactory, "")
	if !Is[specFactory](SpecificationFactory) {
		t.Error("expected specFactory to be registered")
	}
	if Is[specFactory](Worker) {
		t.Error("specFactory is not a worker")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRegister must panic on duplicate registration")
		}
	}()
	MustRegister[specFactory](SpecificationFactory, "")
}
