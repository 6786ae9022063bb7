// Package schema defines the component schema vocabulary shared by every
// other package: components, fields, actions, validation rules, layouts and
// sections. The JSON field names (`componentId`, `fieldKey`, `actionKey`,
// `visibleIf`, `componentType`, ...) are the interchange contract with the
// persistence layer and must not be renamed. The free-form `customProps` bag
// is kept as a raw map so unknown keys survive a round trip; typed views over
// it (table columns, flag configuration, tabs, card fields) are decoded on
// demand by the display resolver.
package schema
