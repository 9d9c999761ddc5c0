package schemafile

// File is the on-disk layout of a catalog.
//
//	types:
//	  - name: player
//	    members:
//	      - name: score
//	        type: integer
//	        required: true
//	        default: 11
//	        validate: [nonnegative]
type File struct {
	Types []TypeDecl `yaml:"types"`
}

// TypeDecl declares one Type Schema.
type TypeDecl struct {
	Name    string       `yaml:"name"`
	Members []MemberDecl `yaml:"members"`
}

// MemberDecl declares one member. Type is empty for raw pass-through, a
// primitive name, or the name of another type in the same file.
type MemberDecl struct {
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type,omitempty"`
	Collection    string   `yaml:"collection,omitempty"`
	Required      bool     `yaml:"required,omitempty"`
	Default       any      `yaml:"default,omitempty"`
	NoCollections bool     `yaml:"no_collections,omitempty"`
	Keys          string   `yaml:"keys,omitempty"`
	Expose        string   `yaml:"expose,omitempty"`
	Validate      []string `yaml:"validate,omitempty"`
}
