// Package validation evaluates schema field rules against candidate values.
//
// ValidateField reports every failing rule for a value in declaration order;
// ValidateForm keeps only the first failure per field. Rules are inline
// schema.ValidationRule values or string references resolved through a
// RuleLookup. References that cannot be resolved are skipped and logged.
package validation
