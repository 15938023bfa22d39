package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	terrors "tradegate/internal/errors"
	"tradegate/internal/schema"
)

// Call executes the described request through the gateway and decodes the
// validated body into T. Decoding happens only after schema validation
// passed, so a decode failure indicates a schema declared too loosely and is
// still surfaced as a SchemaError rather than a partially-typed value.
func Call[T any](ctx context.Context, c *Client, d Descriptor, s *schema.Schema) (T, error) {
	var result T

	body, err := c.Do(ctx, d, s)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal(body, &result); err != nil {
		name := "unchecked"
		if s != nil {
			name = s.Name()
		}
		return result, terrors.NewSchemaError(name, fmt.Sprintf("%T", result), err.Error())
	}
	return result, nil
}
