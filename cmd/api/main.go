// The api command is the Lambda entrypoint. All wiring happens during the
// cold start so warm invocations only pay for the proxy call.
package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"

	"github.com/volchd/projects-api/internal/app"
	"github.com/volchd/projects-api/internal/config"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *app.Container

	coldStart     = true
	coldStartTime time.Time
)

func init() {
	coldStartTime = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// nil identity selects the API Gateway authorizer check.
	container, err = app.New(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("failed to wire dependencies: %v", err)
	}

	chiLambda = chiadapter.NewV2(container.Router)

	container.Logger.Info("cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("environment", cfg.Environment),
		zap.String("table", cfg.TableName),
	)
}

// Handler proxies one API Gateway event through the router and stamps the
// response with cold start telemetry.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}

	return resp, err
}

func main() {
	lambda.Start(Handler)
}
