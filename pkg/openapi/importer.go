package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/schema"
)

const (
	extOrder     = "x-schemaui-order"
	extWidget    = "x-schemaui-widget"
	extVisibleIf = "x-schemaui-visible-if"

	// textareaThreshold is the maxLength above which strings become
	// textareas.
	textareaThreshold = 255
)

// ErrOperationNotFound is returned when an operation id is unknown.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// Option configures an Importer.
type Option func(*Importer)

// WithExternalRefs allows $ref pointers to other files and URLs.
func WithExternalRefs(allowed bool) Option {
	return func(i *Importer) {
		i.externalRefs = allowed
	}
}

// WithValidation validates the document before importing.
func WithValidation(enabled bool) Option {
	return func(i *Importer) {
		i.validate = enabled
	}
}

// WithVersion sets the version stamped on imported schemas.
func WithVersion(version string) Option {
	return func(i *Importer) {
		i.version = version
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Importer converts OpenAPI operations into form schemas.
type Importer struct {
	externalRefs bool
	validate     bool
	version      string
	logger       *zap.Logger
}

// New constructs an Importer.
func New(options ...Option) *Importer {
	i := &Importer{validate: true, logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(i)
	}
	return i
}

// Operation summarizes one importable operation.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	schema  *openapi3.SchemaRef
	desc    string
}

// Load parses an OpenAPI document (JSON or YAML).
func (i *Importer) Load(ctx context.Context, data []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: i.externalRefs}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return spec, nil
}

// Operations lists operations that carry a request body schema, sorted by id.
func (i *Importer) Operations(spec *openapi3.T) []Operation {
	if spec == nil || spec.Paths == nil {
		return nil
	}
	var out []Operation
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			body := requestSchema(op.RequestBody)
			if body == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, Operation{
				ID:      id,
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
				schema:  body,
				desc:    op.Description,
			})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Import converts the named operation into a form schema.
func (i *Importer) Import(spec *openapi3.T, operationID string) (schema.ComponentSchema, error) {
	for _, op := range i.Operations(spec) {
		if op.ID == operationID {
			return i.convert(op)
		}
	}
	return schema.ComponentSchema{}, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
}

// ImportAll converts every operation with a request body. Operations whose
// body is not an object are skipped and logged.
func (i *Importer) ImportAll(spec *openapi3.T) []schema.ComponentSchema {
	var out []schema.ComponentSchema
	for _, op := range i.Operations(spec) {
		converted, err := i.convert(op)
		if err != nil {
			i.logger.Warn("openapi: skipping operation", zap.String("operation", op.ID), zap.Error(err))
			continue
		}
		out = append(out, converted)
	}
	return out
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	return nil
}

func (i *Importer) convert(op Operation) (schema.ComponentSchema, error) {
	body := op.schema.Value
	if body == nil || !hasType(body, openapi3.TypeObject) && len(body.Properties) == 0 {
		return schema.ComponentSchema{}, fmt.Errorf("openapi: %s: request body is not an object", op.ID)
	}

	title := op.Summary
	if title == "" {
		title = body.Title
	}
	if title == "" {
		title = humanize(op.ID)
	}
	out := schema.ComponentSchema{
		ComponentID:   componentID(op.ID),
		Name:          title,
		ComponentType: schema.ComponentForm,
		Title:         title,
		Description:   firstNonEmpty(op.desc, body.Description),
		Version:       i.version,
		CustomProps: map[string]any{
			"method": op.Method,
			"path":   op.Path,
		},
	}
	if op.Method == http.MethodPatch {
		out.CustomProps["partial"] = true
	}

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}
	for _, name := range propertyOrder(body.Properties) {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, ok := convertProperty(name, ref.Value, required[name])
		if !ok {
			i.logger.Debug("openapi: skipping unsupported property",
				zap.String("operation", op.ID), zap.String("property", name))
			continue
		}
		out.Fields = append(out.Fields, field)
	}
	if len(out.Fields) == 0 {
		return schema.ComponentSchema{}, fmt.Errorf("openapi: %s: no supported properties", op.ID)
	}
	return out, nil
}

func convertProperty(name string, src *openapi3.Schema, required bool) (schema.Field, bool) {
	field := schema.Field{
		FieldKey: name,
		Label:    firstNonEmpty(src.Title, humanize(name)),
		HelpText: src.Description,
		Default:  src.Default,
		Required: required,
	}
	if visibleIf, ok := src.Extensions[extVisibleIf].(string); ok {
		field.VisibleIf = visibleIf
	}

	switch {
	case hasType(src, openapi3.TypeBoolean):
		field.Type = schema.FieldBoolean
	case hasType(src, openapi3.TypeInteger), hasType(src, openapi3.TypeNumber):
		field.Type = schema.FieldNumber
		if src.Min != nil {
			field.ValidationRules = append(field.ValidationRules, schema.Inline(schema.ValidationRule{Type: schema.RuleMin, Value: *src.Min}))
		}
		if src.Max != nil {
			field.ValidationRules = append(field.ValidationRules, schema.Inline(schema.ValidationRule{Type: schema.RuleMax, Value: *src.Max}))
		}
	case hasType(src, openapi3.TypeArray):
		if src.Items == nil || src.Items.Value == nil || len(src.Items.Value.Enum) == 0 {
			return schema.Field{}, false
		}
		field.Type = schema.FieldMultiSelect
		field.Options = enumOptions(src.Items.Value.Enum)
	case hasType(src, openapi3.TypeString), src.Type == nil && len(src.Enum) > 0:
		stringField(&field, src)
	default:
		return schema.Field{}, false
	}
	return field, true
}

func stringField(field *schema.Field, src *openapi3.Schema) {
	switch {
	case len(src.Enum) > 0:
		field.Type = schema.FieldSelect
		field.Options = enumOptions(src.Enum)
		return
	case src.Format == "email":
		field.Type = schema.FieldEmail
	case src.Format == "date" || src.Format == "date-time":
		field.Type = schema.FieldDate
	case src.Format == "binary":
		field.Type = schema.FieldFile
		return
	case src.Extensions[extWidget] == "textarea", src.MaxLength != nil && *src.MaxLength > textareaThreshold:
		field.Type = schema.FieldTextarea
	default:
		field.Type = schema.FieldText
	}

	if src.MinLength > 0 {
		field.ValidationRules = append(field.ValidationRules, schema.Inline(schema.ValidationRule{Type: schema.RuleMinLength, Value: float64(src.MinLength)}))
	}
	if src.MaxLength != nil {
		field.ValidationRules = append(field.ValidationRules, schema.Inline(schema.ValidationRule{Type: schema.RuleMaxLength, Value: float64(*src.MaxLength)}))
	}
	if src.Pattern != "" {
		field.ValidationRules = append(field.ValidationRules, schema.Inline(schema.ValidationRule{Type: schema.RulePattern, Value: src.Pattern}))
	}
}

func hasType(src *openapi3.Schema, kind string) bool {
	return src.Type != nil && src.Type.Is(kind)
}

func enumOptions(values []any) []schema.FieldOption {
	options := make([]schema.FieldOption, 0, len(values))
	for _, value := range values {
		label := fmt.Sprint(value)
		options = append(options, schema.FieldOption{Label: humanize(label), Value: value})
	}
	return options
}

// propertyOrder sorts by the order extension, then by name.
func propertyOrder(properties openapi3.Schemas) []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	rank := func(name string) float64 {
		ref := properties[name]
		if ref == nil || ref.Value == nil {
			return 1 << 30
		}
		if order, ok := ref.Value.Extensions[extOrder].(float64); ok {
			return order
		}
		return 1 << 30
	}
	sort.SliceStable(names, func(a, b int) bool {
		ra, rb := rank(names[a]), rank(names[b])
		if ra != rb {
			return ra < rb
		}
		return names[a] < names[b]
	})
	return names
}

func componentID(operationID string) string {
	var b strings.Builder
	lastUnderscore := false
	for i, r := range operationID {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && !lastUnderscore {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// humanize turns snake, kebab and camel case identifiers into "Sentence case".
func humanize(name string) string {
	words := strings.Fields(strings.ReplaceAll(componentID(name), "_", " "))
	if len(words) == 0 {
		return name
	}
	sentence := strings.Join(words, " ")
	runes := []rune(sentence)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
