package api

import (
	"github.com/getkin/kin-openapi/openapi3"

	"racing-api/internal/domain"
	"racing-api/internal/recordschema"
	"racing-api/internal/service/standings"
)

var (
	integerTypes = openapi3.Types{"integer"}
	numberTypes  = openapi3.Types{"number"}
	stringTypes  = openapi3.Types{"string"}
	objectTypes  = openapi3.Types{"object"}
	arrayTypes   = openapi3.Types{"array"}
)

func strPtr(s string) *string { return &s }

func schemaRef(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}
}

func fieldSchema(f domain.FieldDescriptor) *openapi3.Schema {
	s := &openapi3.Schema{Nullable: f.Nullable}
	switch f.Type {
	case domain.FieldInteger:
		s.Type = &integerTypes
		s.Format = "int64"
	case domain.FieldFloat:
		s.Type = &numberTypes
		s.Format = "double"
	default:
		s.Type = &stringTypes
	}
	return s
}

// recordSchemas returns the stored-row schema and the request-payload
// schema of a table. The payload omits the identity.
func recordSchemas(rs *recordschema.RecordSchema) (row, input *openapi3.Schema) {
	row = &openapi3.Schema{Type: &objectTypes, Properties: openapi3.Schemas{}}
	input = &openapi3.Schema{Type: &objectTypes, Properties: openapi3.Schemas{}}
	for _, f := range rs.Table().Fields {
		ref := &openapi3.SchemaRef{Value: fieldSchema(f)}
		row.Properties[f.Name] = ref
		row.Required = append(row.Required, f.Name)
		if f.Identity {
			continue
		}
		input.Properties[f.Name] = ref
		if !f.Nullable && !f.HasDefault {
			input.Required = append(input.Required, f.Name)
		}
	}
	return row, input
}

func jsonResponse(description string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: &openapi3.Response{
		Description: strPtr(description),
		Content: openapi3.Content{
			"application/json": &openapi3.MediaType{Schema: schema},
		},
	}}
}

func errorResponses(op *openapi3.Operation, codes ...string) {
	for _, code := range codes {
		op.Responses.Set(code, jsonResponse("Error", schemaRef("Error")))
	}
}

func arrayOf(items *openapi3.SchemaRef) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &arrayTypes, Items: items}}
}

// BuildOpenAPI describes the table and standings routes served by the
// router.
func BuildOpenAPI(registry *recordschema.Registry, views []standings.View, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Racing API",
			Version: version,
		},
		Paths: &openapi3.Paths{},
		Components: &openapi3.Components{Schemas: openapi3.Schemas{
			"Error": &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type: &objectTypes,
				Properties: openapi3.Schemas{
					"code":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &integerTypes}},
					"message": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &stringTypes}},
				},
				Required: []string{"code", "message"},
			}},
			"DeleteStatus": &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type: &objectTypes,
				Properties: openapi3.Schemas{
					"status": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &stringTypes}},
				},
			}},
		}},
	}

	rangeParam := &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name: "range", In: "query",
		Description: "Inclusive row range as a JSON array, e.g. [0,9]",
		Schema:      &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &stringTypes}},
	}}
	sortParam := &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name: "sort", In: "query",
		Description: `Sort field and order as a JSON array, e.g. ["surname","ASC"]`,
		Schema:      &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &stringTypes}},
	}}

	for _, name := range registry.Tables() {
		rs, _ := registry.Lookup(name)
		row, input := recordSchemas(rs)
		inputName := name + "_input"
		doc.Components.Schemas[name] = &openapi3.SchemaRef{Value: row}
		doc.Components.Schemas[inputName] = &openapi3.SchemaRef{Value: input}

		list := &openapi3.Operation{
			OperationID: "list_" + name,
			Summary:     "List " + name,
			Tags:        []string{name},
			Parameters:  openapi3.Parameters{rangeParam, sortParam},
			Responses:   &openapi3.Responses{},
		}
		list.Responses.Set("200", jsonResponse("OK", arrayOf(schemaRef(name))))
		errorResponses(list, "400", "503")

		create := &openapi3.Operation{
			OperationID: "create_" + name,
			Summary:     "Create a row in " + name,
			Tags:        []string{name},
			RequestBody: &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
				Required: true,
				Content: openapi3.Content{
					"application/json": &openapi3.MediaType{Schema: schemaRef(inputName)},
				},
			}},
			Responses: &openapi3.Responses{},
		}
		create.Responses.Set("201", jsonResponse("Created", schemaRef(name)))
		errorResponses(create, "400", "409", "503")

		doc.Paths.Set("/"+name, &openapi3.PathItem{Get: list, Post: create})

		idParam := &openapi3.ParameterRef{Value: &openapi3.Parameter{
			Name: "id", In: "path", Required: true,
			Schema: &openapi3.SchemaRef{Value: fieldSchema(rs.Identity())},
		}}

		get := &openapi3.Operation{
			OperationID: "get_" + name,
			Summary:     "Get a row of " + name,
			Tags:        []string{name},
			Responses:   &openapi3.Responses{},
		}
		get.Responses.Set("200", jsonResponse("OK", schemaRef(name)))
		errorResponses(get, "400", "404", "503")

		update := &openapi3.Operation{
			OperationID: "update_" + name,
			Summary:     "Replace a row of " + name,
			Tags:        []string{name},
			RequestBody: create.RequestBody,
			Responses:   &openapi3.Responses{},
		}
		update.Responses.Set("200", jsonResponse("OK", schemaRef(name)))
		errorResponses(update, "400", "404", "409", "503")

		del := &openapi3.Operation{
			OperationID: "delete_" + name,
			Summary:     "Delete a row of " + name,
			Tags:        []string{name},
			Responses:   &openapi3.Responses{},
		}
		del.Responses.Set("200", jsonResponse("Deleted", schemaRef("DeleteStatus")))
		errorResponses(del, "400", "503")

		doc.Paths.Set("/"+name+"/{id}", &openapi3.PathItem{
			Get:        get,
			Put:        update,
			Delete:     del,
			Parameters: openapi3.Parameters{idParam},
		})
	}

	for _, v := range views {
		op := &openapi3.Operation{
			OperationID: v.Name,
			Summary:     "Season standings: " + v.Name,
			Tags:        []string{"standings"},
			Responses:   &openapi3.Responses{},
		}
		item := &openapi3.Schema{Type: &objectTypes, AdditionalProperties: openapi3.AdditionalProperties{Has: boolPtr(true)}}
		op.Responses.Set("200", jsonResponse("OK", arrayOf(&openapi3.SchemaRef{Value: item})))
		errorResponses(op, "503")
		doc.Paths.Set(v.Path, &openapi3.PathItem{Get: op})
	}

	return doc
}

func boolPtr(b bool) *bool { return &b }
