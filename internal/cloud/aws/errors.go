package aws

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/frontship/frontship/internal/models"
)

// wrapRemote substitutes actionable errors for raw SDK failures: permission
// rejections name the refused operation and resource; anything else keeps
// the first underlying error code for diagnosis.
func wrapRemote(operation, resource string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "Forbidden":
			return &models.RemoteAccessDenied{
				Operation: operation,
				Resource:  resource,
				Cause:     err,
			}
		}
		return &models.RemoteFailure{
			Operation: operation,
			Code:      apiErr.ErrorCode(),
			Cause:     err,
		}
	}
	return &models.RemoteFailure{Operation: operation, Cause: err}
}
