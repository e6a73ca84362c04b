package app

import _ "embed"

// OpenAPISpec is the OpenAPI document of the JSON API
//
//go:embed openapi.yaml
var OpenAPISpec []byte
