// Package orchestrator wires section resolution, placeholder checks,
// collection, record validation and the email-keyed upsert into a single
// submit call, and builds the dynamic form model renderers consume.
package orchestrator
