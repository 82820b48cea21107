package models

// SchemaField is a name/type pair attached to a dataset descriptor.
type SchemaField struct {
	Name string `json:"name" bson:"name"`
	Type string `json:"type" bson:"type"`
}

// Dataset identifies a source or sink for lineage consumers. It is written
// out only and never read back by the pipeline.
type Dataset struct {
	Namespace string        `json:"namespace" bson:"namespace"`
	Name      string        `json:"name" bson:"name"`
	Fields    []SchemaField `json:"fields,omitempty" bson:"fields,omitempty"`
}

// SalesSchemaFields renders SalesFields for a dataset descriptor.
func SalesSchemaFields() []SchemaField {
	out := make([]SchemaField, len(SalesFields))
	for i, f := range SalesFields {
		out[i] = SchemaField{Name: f.Name, Type: f.SQLType}
	}
	return out
}
