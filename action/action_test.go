/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package action_test

import (
	"context"
	"testing"

	"github.com/suparena/dashboard/action"
)

type countingProvider struct {
	supports bool
	actions  []action.Action
	calls    int
}

func (p *countingProvider) Supports(action.Target) bool { return p.supports }

func (p *countingProvider) Actions(context.Context, action.Target) []action.Action {
	p.calls++
	return p.actions
}

func TestRegistryOnlyAsksSupportingProviders(t *testing.T) {
	ctx := context.Background()

	supporting := &countingProvider{
		supports: true,
		actions:  []action.Action{{Name: "edit", Title: "Edit"}},
	}
	unsupporting := &countingProvider{
		supports: false,
		actions:  []action.Action{{Name: "delete", Title: "Delete"}},
	}

	reg := action.NewRegistry()
	reg.Register(unsupporting)
	reg.Register(supporting)

	got := reg.Actions(ctx, action.Target{Page: "orders", Item: map[string]any{"id": 1}})
	if len(got) != 1 || got[0].Name != "edit" {
		t.Fatalf("expected only the supporting provider's action, got %+v", got)
	}
	if unsupporting.calls != 0 {
		t.Errorf("unsupporting provider was invoked %d times", unsupporting.calls)
	}
	if supporting.calls != 1 {
		t.Errorf("supporting provider should be invoked once, got %d", supporting.calls)
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 providers, got %d", reg.Len())
	}
}

func TestRegistryOrdering(t *testing.T) {
	reg := action.NewRegistry()
	reg.Register(&countingProvider{supports: true, actions: []action.Action{
		{Name: "b", Weight: 1},
		{Name: "z", Weight: -1},
	}})
	reg.Register(&countingProvider{supports: true, actions: []action.Action{
		{Name: "a", Weight: 1},
	}})

	got := reg.Actions(context.Background(), action.Target{})
	names := []string{got[0].Name, got[1].Name, got[2].Name}
	if names[0] != "z" || names[1] != "a" || names[2] != "b" {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestExpandURL(t *testing.T) {
	type order struct {
		ID       string `json:"id"`
		Customer int    `json:"customer"`
	}

	got := action.ExpandURL("/customers/{customer}/orders/{id}?x={missing}", order{ID: "A-1", Customer: 7})
	if got != "/customers/7/orders/A-1?x=" {
		t.Errorf("unexpected expansion: %q", got)
	}
}

func TestStaticProvider(t *testing.T) {
	ctx := context.Background()
	p := action.Static{
		Pages:      []string{"orders"},
		ItemLevel:  true,
		Definition: []action.Action{{Name: "view", URL: "/orders/{id}"}},
	}

	item := map[string]any{"id": "42"}
	if !p.Supports(action.Target{Page: "orders", Item: item}) {
		t.Fatal("expected item-level support on orders")
	}
	if p.Supports(action.Target{Page: "orders"}) {
		t.Error("item-level provider should not support page-level targets")
	}
	if p.Supports(action.Target{Page: "invoices", Item: item}) {
		t.Error("provider should be limited to its pages")
	}

	got := p.Actions(ctx, action.Target{Page: "orders", Item: item})
	if len(got) != 1 || got[0].URL != "/orders/42" {
		t.Errorf("unexpected actions: %+v", got)
	}
	if p.Definition[0].URL != "/orders/{id}" {
		t.Error("Actions must not mutate the definition")
	}

	global := action.Static{Definition: []action.Action{{Name: "export", URL: "/export"}}}
	if !global.Supports(action.Target{Page: "anything"}) {
		t.Error("provider without pages should support every page")
	}
}
