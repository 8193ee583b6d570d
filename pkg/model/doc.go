// Package model defines the typed form model consumed by renderers and the
// record types produced by the submission pipeline. FieldSpec declares each
// tracked field (key, placeholder, validation hints); FormModel is the dynamic
// schema built for a requested section count and order; TicketItem and
// FormSubmission are the flat JSON-compatible shapes persisted per email.
// Validation rules use canonical identifiers (min/max/step/required) with
// string parameters so renderers can map them onto prompts or HTML
// attributes without sacrificing deterministic JSON snapshots.
package model
