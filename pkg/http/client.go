package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// LambdaScheme is the URL scheme routed to AWS Lambda instead of the network.
const LambdaScheme = "lambda"

// LambdaInvoker is the part of the Lambda API the client uses.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Client wraps the standard http.Client and adds Lambda invocation support.
// Requests whose URL uses the lambda:// scheme are delivered to the function
// named by the host as an API Gateway v2 proxy event.
type Client struct {
	*http.Client

	invokerOnce sync.Once
	invoker     LambdaInvoker
	invokerErr  error
	newInvoker  func(ctx context.Context) (LambdaInvoker, error)
}

// NewClient creates a client that sends network requests through
// http.DefaultClient. AWS configuration is loaded on the first lambda://
// request.
func NewClient() *Client {
	return NewClientWithHTTPClient(http.DefaultClient)
}

// NewClientWithHTTPClient creates a client around a custom HTTP client.
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		Client:     httpClient,
		newInvoker: defaultInvoker,
	}
}

// NewClientWithInvoker creates a client with a fixed Lambda invoker.
func NewClientWithInvoker(httpClient *http.Client, invoker LambdaInvoker) *Client {
	c := NewClientWithHTTPClient(httpClient)
	c.newInvoker = func(context.Context) (LambdaInvoker, error) {
		return invoker, nil
	}
	return c
}

func defaultInvoker(ctx context.Context) (LambdaInvoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return lambda.NewFromConfig(cfg), nil
}

// Do performs the request, routing to Lambda or HTTP based on the URL scheme
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme == LambdaScheme {
		return c.doLambda(req)
	}
	return c.Client.Do(req)
}

func (c *Client) lambdaInvoker(ctx context.Context) (LambdaInvoker, error) {
	c.invokerOnce.Do(func() {
		c.invoker, c.invokerErr = c.newInvoker(ctx)
	})
	return c.invoker, c.invokerErr
}

// doLambda handles Lambda invocations
func (c *Client) doLambda(req *http.Request) (*http.Response, error) {
	functionName := req.URL.Host
	if functionName == "" {
		return nil, fmt.Errorf("lambda URL missing function name")
	}

	ctx := req.Context()
	invoker, err := c.lambdaInvoker(ctx)
	if err != nil {
		return nil, err
	}

	event, err := httpRequestToLambdaEvent(req)
	if err != nil {
		return nil, fmt.Errorf("converting request to Lambda event: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshaling Lambda event: %w", err)
	}

	output, err := invoker.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoking Lambda function: %w", err)
	}

	if output.FunctionError != nil {
		return nil, fmt.Errorf("Lambda function error: %s", *output.FunctionError)
	}

	resp, err := lambdaResponseToHTTP(output.Payload)
	if err != nil {
		return nil, err
	}
	resp.Request = req
	return resp, nil
}

// httpRequestToLambdaEvent converts an http.Request to an API Gateway v2 HTTP proxy event
func httpRequestToLambdaEvent(req *http.Request) (*events.APIGatewayV2HTTPRequest, error) {
	var bodyString string
	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		bodyString = string(bodyBytes)
	}

	headers := make(map[string]string, len(req.Header)+1)
	for key, values := range req.Header {
		headers[key] = strings.Join(values, ",")
	}
	if req.Host != "" {
		headers["Host"] = req.Host
	}

	queryParams := make(map[string]string)
	for key, values := range req.URL.Query() {
		queryParams[key] = strings.Join(values, ",")
	}

	rawPath := req.URL.EscapedPath()
	routeKey := fmt.Sprintf("%s %s", req.Method, rawPath)
	now := time.Now()

	return &events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              routeKey,
		RawPath:               rawPath,
		RawQueryString:        req.URL.RawQuery,
		Headers:               headers,
		QueryStringParameters: queryParams,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			AccountID:    "123456789012",
			APIID:        "callout-lambda",
			DomainName:   "lambda.local",
			DomainPrefix: "lambda",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    req.Method,
				Path:      rawPath,
				Protocol:  "HTTP/1.1",
				SourceIP:  "127.0.0.1",
				UserAgent: "callout",
			},
			RequestID: fmt.Sprintf("callout-%d", now.UnixNano()),
			RouteKey:  routeKey,
			Stage:     "$default",
			Time:      now.Format("02/Jan/2006:15:04:05 -0700"),
			TimeEpoch: now.UnixMilli(),
		},
		Body:            bodyString,
		IsBase64Encoded: false,
	}, nil
}

// lambdaResponseToHTTP converts a Lambda response to an http.Response
func lambdaResponseToHTTP(payload []byte) (*http.Response, error) {
	var lambdaResp events.APIGatewayV2HTTPResponse
	if err := json.Unmarshal(payload, &lambdaResp); err != nil {
		return nil, fmt.Errorf("parsing Lambda response: %w", err)
	}

	resp := &http.Response{
		StatusCode: lambdaResp.StatusCode,
		Status:     fmt.Sprintf("%d %s", lambdaResp.StatusCode, http.StatusText(lambdaResp.StatusCode)),
		Header:     make(http.Header),
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
	}

	for key, value := range lambdaResp.Headers {
		resp.Header.Set(key, value)
	}
	for key, values := range lambdaResp.MultiValueHeaders {
		for _, value := range values {
			resp.Header.Add(key, value)
		}
	}

	bodyBytes := []byte(lambdaResp.Body)
	if lambdaResp.IsBase64Encoded && lambdaResp.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(lambdaResp.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 Lambda body: %w", err)
		}
		bodyBytes = decoded
	}
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	resp.ContentLength = int64(len(bodyBytes))

	return resp, nil
}
