// Package awsinvoke wraps the Lambda Invoke API for the remote executor.
// Function deployment is operational tooling handled outside this module;
// only invocation of an already-deployed function is supported.
package awsinvoke

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
)

// Client invokes Lambda functions.
type Client struct {
	client lambdaiface.LambdaAPI
}

// NewClient creates a Client using the ambient AWS configuration.
func NewClient() *Client {
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	return &Client{
		client: lambda.New(sess),
	}
}

// Invoke synchronously invokes the named function and returns its
// response payload. An error reported by the function itself is
// surfaced as an error, not a payload.
func (c *Client) Invoke(functionName string, payload []byte) ([]byte, error) {
	invokeInput := &lambda.InvokeInput{
		FunctionName: aws.String(functionName),
		Payload:      payload,
	}

	output, err := c.client.Invoke(invokeInput)
	if err != nil {
		return nil, err
	}
	if output.FunctionError != nil {
		return nil, fmt.Errorf("function %s failed: %s (%s)",
			functionName, *output.FunctionError, string(output.Payload))
	}
	return output.Payload, nil
}
