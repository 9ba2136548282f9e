//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"credverify/pkg/testutil/containers"
)

func TestPostgresStoreContract(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	suite.Run(t, &storeContractSuite{newStore: func() Store {
		if err := pg.TruncateAll(context.Background()); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return NewPostgres(pg.DB)
	}})
}
