// Package form owns one editing session over a Form schema.
//
// A Session holds the working data record, the per-field error map and the
// Idle -> Editing -> Submitting state machine. Field changes clear the field's
// error without re-validating; Submit validates every visible field and only
// calls the Submitter when the whole form passes. Organize groups the schema's
// fields by sections, explicit order, or declaration order.
package form
