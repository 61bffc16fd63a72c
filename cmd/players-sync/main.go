package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/tyler180/sleeper-sync/internal/app/sleepersync"
)

func main() {
	log.SetFlags(0)
	lambda.Start(sleepersync.PlayersEntrypoint)
}
