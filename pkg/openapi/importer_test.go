package openapi

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaui/pkg/schema"
)

const petstore = `
openapi: 3.0.3
info:
  title: Pets
  version: 1.0.0
paths:
  /pets:
    post:
      operationId: createPet
      summary: Register pet
      description: Adds a pet to the store.
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name, kind]
              properties:
                name:
                  type: string
                  minLength: 2
                  maxLength: 40
                  x-schemaui-order: 1
                kind:
                  type: string
                  enum: [cat, dog]
                  x-schemaui-order: 2
                age:
                  type: integer
                  minimum: 0
                  maximum: 30
                notes:
                  type: string
                  x-schemaui-widget: textarea
                  x-schemaui-visible-if: "kind == 'dog'"
                owner_email:
                  type: string
                  format: email
                  title: Owner
                vaccinated:
                  type: boolean
                  default: false
                tags:
                  type: array
                  items:
                    type: string
                    enum: [indoor, outdoor]
                address:
                  type: object
                  properties:
                    city:
                      type: string
      responses:
        "201":
          description: created
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
  /pets/{id}:
    patch:
      operationId: updatePet
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              properties:
                born:
                  type: string
                  format: date
      responses:
        "200":
          description: ok
`

func TestOperationsListsOnlyRequestBodies(t *testing.T) {
	t.Parallel()

	importer := New()
	spec, err := importer.Load(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var ids []string
	for _, op := range importer.Operations(spec) {
		ids = append(ids, op.Method+" "+op.ID)
	}
	want := []string{"POST createPet", "PATCH updatePet"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestImportBuildsFormSchema(t *testing.T) {
	t.Parallel()

	importer := New(WithVersion("1.0.0"))
	spec, err := importer.Load(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := importer.Import(spec, "createPet")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	want := schema.ComponentSchema{
		ComponentID:   "create_pet",
		Name:          "Register pet",
		Title:         "Register pet",
		Description:   "Adds a pet to the store.",
		ComponentType: schema.ComponentForm,
		Version:       "1.0.0",
		CustomProps:   map[string]any{"method": "POST", "path": "/pets"},
		Fields: []schema.Field{
			{
				FieldKey: "name", Label: "Name", Type: schema.FieldText, Required: true,
				ValidationRules: []schema.RuleEntry{
					schema.Inline(schema.ValidationRule{Type: schema.RuleMinLength, Value: float64(2)}),
					schema.Inline(schema.ValidationRule{Type: schema.RuleMaxLength, Value: float64(40)}),
				},
			},
			{
				FieldKey: "kind", Label: "Kind", Type: schema.FieldSelect, Required: true,
				Options: []schema.FieldOption{{Label: "Cat", Value: "cat"}, {Label: "Dog", Value: "dog"}},
			},
			{
				FieldKey: "age", Label: "Age", Type: schema.FieldNumber,
				ValidationRules: []schema.RuleEntry{
					schema.Inline(schema.ValidationRule{Type: schema.RuleMin, Value: float64(0)}),
					schema.Inline(schema.ValidationRule{Type: schema.RuleMax, Value: float64(30)}),
				},
			},
			{FieldKey: "notes", Label: "Notes", Type: schema.FieldTextarea, VisibleIf: "kind == 'dog'"},
			{FieldKey: "owner_email", Label: "Owner", Type: schema.FieldEmail},
			{
				FieldKey: "tags", Label: "Tags", Type: schema.FieldMultiSelect,
				Options: []schema.FieldOption{{Label: "Indoor", Value: "indoor"}, {Label: "Outdoor", Value: "outdoor"}},
			},
			{FieldKey: "vaccinated", Label: "Vaccinated", Type: schema.FieldBoolean, Default: false},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestImportMarksPatchPartial(t *testing.T) {
	t.Parallel()

	importer := New()
	spec, err := importer.Load(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := importer.Import(spec, "updatePet")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Title != "Update pet" {
		t.Fatalf("expected humanized title, got %q", got.Title)
	}
	if got.CustomProps["partial"] != true {
		t.Fatalf("expected partial flag, got %v", got.CustomProps)
	}
	if len(got.Fields) != 1 || got.Fields[0].Type != schema.FieldDate {
		t.Fatalf("expected one date field, got %+v", got.Fields)
	}
}

func TestImportUnknownOperation(t *testing.T) {
	t.Parallel()

	importer := New()
	spec, err := importer.Load(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := importer.Import(spec, "deletePet"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
}

func TestImportAllConvertsEveryOperation(t *testing.T) {
	t.Parallel()

	importer := New()
	spec, err := importer.Load(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	all := importer.ImportAll(spec)
	if len(all) != 2 {
		t.Fatalf("expected 2 schemas, got %d", len(all))
	}
	for _, component := range all {
		if !component.ComponentType.Valid() {
			t.Fatalf("invalid component type %q", component.ComponentType)
		}
	}
}

func TestLoadRejectsEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	importer := New()
	if _, err := importer.Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := importer.Load(context.Background(), []byte("openapi: [")); err == nil {
		t.Fatalf("expected error for malformed document")
	}
}

func TestHumanize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"createPet":   "Create pet",
		"owner_email": "Owner email",
		"kebab-case":  "Kebab case",
		"x":           "X",
	}
	for in, want := range cases {
		if got := humanize(in); got != want {
			t.Fatalf("humanize(%q) = %q, want %q", in, got, want)
		}
	}
}
