package source

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source is one external price provider. Providers are capability-equivalent
// and tried in order by the fetcher; each call must respect ctx so a slow
// provider cannot stall the fetch loop.
type Source interface {
	Name() string
	FetchPrice(ctx context.Context) (decimal.Decimal, error)
}
