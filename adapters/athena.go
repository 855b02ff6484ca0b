package adapters

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"

	"github.com/marketpulse/indexq/core"
)

// Register client
func init() {
	_ = register(&Athena{}, "athena")
}

var _ core.Adapter = (*Athena)(nil)

// Athena connects to AWS Athena. Credentials come from the default AWS
// credential chain. A non-empty URL overrides the service endpoint.
type Athena struct{}

func (a *Athena) Connect(params *core.ConnectionParams) (core.Service, error) {
	if params.Region == "" {
		return nil, fmt.Errorf("athena requires a region")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(params.Region))
	if err != nil {
		return nil, fmt.Errorf("awsconfig.LoadDefaultConfig: %w", err)
	}

	client := athena.NewFromConfig(cfg, func(o *athena.Options) {
		if params.URL != "" {
			o.BaseEndpoint = aws.String(params.URL)
		}
	})

	return newAthenaService(client, params.PageSize, params.RequestsPerSecond), nil
}
