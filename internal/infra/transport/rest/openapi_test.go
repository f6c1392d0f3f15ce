package rest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/require"
)

// The served routes are documented in api/openapi.yaml; keep the
// contract file loadable and internally consistent.
func TestOpenAPIContractIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(filepath.Join("..", "..", "..", "..", "api", "openapi.yaml"))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{
		"/analysis/flow",
		"/analysis/constraints",
		"/analysis/rootcause",
		"/analysis/forecast",
		"/analysis/run",
		"/analysis/ownership",
		"/constraints/history",
	} {
		require.NotNil(t, doc.Paths.Find(path), "path %s missing from contract", path)
	}
}
