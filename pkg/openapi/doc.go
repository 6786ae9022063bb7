// Package openapi imports form schemas from OpenAPI request bodies. Each
// operation with an object request body becomes one form ComponentSchema.
//
// Extensions on properties refine the result:
//
//	x-schemaui-order      sort key, lower first
//	x-schemaui-widget     "textarea" forces a multi-line field
//	x-schemaui-visible-if visibleIf expression copied to the field
package openapi
