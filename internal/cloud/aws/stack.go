package aws

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/smithy-go"
)

// Output looks up a stack output by name. A stack or output that does not
// exist is reported as absent, not as an error: callers run against
// infrastructure at any lifecycle stage.
func (p *Provider) Output(ctx context.Context, stack, name string) (string, bool, error) {
	out, err := p.CloudFormation.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stack),
	})
	if err != nil {
		if stackMissing(err) {
			return "", false, nil
		}
		return "", false, wrapRemote("describe stack", stack, err)
	}
	if len(out.Stacks) == 0 {
		return "", false, nil
	}
	for _, o := range out.Stacks[0].Outputs {
		if aws.ToString(o.OutputKey) == name {
			return aws.ToString(o.OutputValue), true, nil
		}
	}
	return "", false, nil
}

// ResourceID resolves the physical id of a stack resource by logical id.
func (p *Provider) ResourceID(ctx context.Context, stack, logicalID string) (string, bool, error) {
	out, err := p.CloudFormation.DescribeStackResources(ctx, &cloudformation.DescribeStackResourcesInput{
		StackName:         aws.String(stack),
		LogicalResourceId: aws.String(logicalID),
	})
	if err != nil {
		if stackMissing(err) {
			return "", false, nil
		}
		return "", false, wrapRemote("describe stack resources", stack, err)
	}
	for _, r := range out.StackResources {
		if aws.ToString(r.LogicalResourceId) == logicalID {
			id := aws.ToString(r.PhysicalResourceId)
			return id, id != "", nil
		}
	}
	return "", false, nil
}

// stackMissing recognizes the ValidationError CloudFormation returns for
// nonexistent stacks or resources.
func stackMissing(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}
