// Package display resolves component schemas into view trees.
//
// A Resolver picks one strategy per schema: structural layout first, then
// customProps.displayType (table, card, actions, tabs, form), then the legacy
// displayTemplate. Layout areas and tabs name other components by id; those
// are fetched and resolved recursively against the same shared data context,
// bounded by a depth guard and cycle detection. Each subtree is resolved
// behind a recover boundary so one broken component renders a fallback node
// while its siblings render normally.
package display
