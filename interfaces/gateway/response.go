package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

const (
	HeaderContentType = "Content-Type"
	HeaderAllowOrigin = "Access-Control-Allow-Origin"
	ContentTypeJSON   = "application/json"

	InternalErrorMessage = "Internal server error"
)

// MessageBody is the error body shape.
type MessageBody struct {
	Message string `json:"message"`
}

// BuildResponse wraps body in the proxy response envelope. Every response
// carries the JSON content type and a wildcard CORS origin. A body that
// cannot be serialized becomes the generic 500.
func BuildResponse(statusCode int, body interface{}) events.APIGatewayProxyResponse {
	encoded, err := json.Marshal(body)
	if err != nil {
		statusCode = http.StatusInternalServerError
		encoded, _ = json.Marshal(MessageBody{Message: InternalErrorMessage})
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			HeaderContentType: ContentTypeJSON,
			HeaderAllowOrigin: "*",
		},
		Body: string(encoded),
	}
}

// Message builds an error response with a {"message": ...} body.
func Message(statusCode int, message string) events.APIGatewayProxyResponse {
	return BuildResponse(statusCode, MessageBody{Message: message})
}
