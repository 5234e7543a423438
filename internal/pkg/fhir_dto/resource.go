package fhir_dto

import "github.com/goccy/go-json"

// Resource is a FHIR resource document the gateway does not interpret.
type Resource map[string]interface{}

func (r Resource) ResourceType() string {
	value, _ := r["resourceType"].(string)
	return value
}

func (r Resource) ID() string {
	value, _ := r["id"].(string)
	return value
}

// Clone copies the top level keys. Nested values stay shared.
func (r Resource) Clone() Resource {
	clone := make(Resource, len(r))
	for key, value := range r {
		clone[key] = value
	}
	return clone
}

// WithIdentity returns a copy carrying the given id and resourceType.
func (r Resource) WithIdentity(resourceType, id string) Resource {
	clone := r.Clone()
	clone["resourceType"] = resourceType
	if id != "" {
		clone["id"] = id
	}
	return clone
}

// ToResource converts a typed FHIR struct into its generic document form.
func ToResource(v interface{}) (Resource, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var resource Resource
	if err := json.Unmarshal(raw, &resource); err != nil {
		return nil, err
	}
	return resource, nil
}
