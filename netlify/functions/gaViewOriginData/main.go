package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/enterprise/ga-view-proxy/internal/app"
	"github.com/enterprise/ga-view-proxy/internal/report"
)

func main() {
	lambda.Start(app.LambdaFunction(report.KindOrigin))
}
