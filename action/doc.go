/*
Package action manages the operations offered next to listed items and pages.

Providers declare which targets they support and contribute actions for them;
a Registry aggregates providers and only consults those that support the target:

	reg := action.NewRegistry()
	reg.Register(action.Static{
	    Pages:     []string{"orders"},
	    ItemLevel: true,
	    Definition: []action.Action{
	        {Name: "view", Title: "View", URL: "/orders/{id}"},
	    },
	})

	actions := reg.Actions(ctx, action.Target{Page: "orders", Item: order})

URL templates use {field} macros resolved through the property package.
*/
package action
