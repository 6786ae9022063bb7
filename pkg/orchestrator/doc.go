// Package orchestrator is the entry point that turns a schema, or a schema id
// resolved through a Fetcher, into a rendered view.
//
// An Orchestrator holds the collaborators (fetcher, submitter, dispatcher,
// confirmer, rule lookup) and renderer registry. Each rendering session is a
// Session: it tracks the loading/ready/failed/empty status of schema
// resolution, owns the UI state record that actions mutate, keeps form
// sessions alive across renders and forwards every action to the host's
// dispatcher after applying the built-in UI state effects.
package orchestrator
