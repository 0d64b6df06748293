package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// HandleLambda adapts Handle to API Gateway proxy events, as delivered by
// AWS Lambda and Netlify functions. It never returns an error; failures are
// reported through the status code.
func (h *Handler) HandleLambda(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return LambdaResponse(h.Handle(ctx, LambdaRequest(event))), nil
}

// LambdaRequest converts a proxy event into a Request. The gateway request
// ID is used when the caller sent no X-Request-ID.
func LambdaRequest(event events.APIGatewayProxyRequest) Request {
	header := eventHeader(event)
	if header.Get(RequestIDHeader) == "" && event.RequestContext.RequestID != "" {
		header.Set(RequestIDHeader, event.RequestContext.RequestID)
	}

	return Request{
		Method: strings.ToUpper(event.HTTPMethod),
		Header: header,
	}
}

// LambdaResponse converts resp into a proxy response with single-value headers
func LambdaResponse(resp Response) events.APIGatewayProxyResponse {
	out := events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string, len(resp.Header)),
		Body:       string(resp.Body),
	}
	for name := range resp.Header {
		out.Headers[name] = resp.Header.Get(name)
	}
	return out
}

// eventHeader merges single and multi-value headers. Header names from the
// gateway may arrive lower-cased, so they are canonicalised.
func eventHeader(event events.APIGatewayProxyRequest) http.Header {
	header := http.Header{}
	for name, value := range event.Headers {
		header.Set(name, value)
	}
	for name, values := range event.MultiValueHeaders {
		header.Del(name)
		for _, value := range values {
			header.Add(name, value)
		}
	}
	return header
}
