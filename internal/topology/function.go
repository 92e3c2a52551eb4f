package topology

import (
	"fmt"

	"github.com/dop251/goja"
)

// HostForwardFunctionCode is the viewer-request edge function. CloudFront
// rewrites the Host header to the origin's own domain, so the original value
// is carried to the compute origin in x-forwarded-host instead.
const HostForwardFunctionCode = `function handler(event) {
  var request = event.request;
  if (request.headers.host) {
    request.headers["x-forwarded-host"] = { value: request.headers.host.value };
  }
  return request;
}`

// ValidateFunctionCode parses edge function source as JavaScript before it
// is attached to the template, so a bad function fails the package phase
// instead of the infrastructure update.
func ValidateFunctionCode(code string) error {
	if _, err := goja.Compile("viewer-request.js", code, true); err != nil {
		return fmt.Errorf("edge function does not parse: %w", err)
	}
	return nil
}
