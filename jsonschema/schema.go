package jsonschema

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Schema      string `json:"$schema,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`

	// Definitions referenced through Ref ("#/$defs/<name>").
	Defs map[string]*Schema `json:"$defs,omitempty"`
}
