//go:build integration

package webapi_test

import (
	"testing"

	infra_repository "github.com/gamewallet/wallet/infra/repository"
	pgtestutils "github.com/gamewallet/wallet/pkg/testutils"
	"github.com/gamewallet/wallet/webapi/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// PostgresWebAPITestSuite reruns every WebAPITestSuite case over the gorm unit of work.
type PostgresWebAPITestSuite struct {
	WebAPITestSuite
	db *gorm.DB
}

func TestPostgresWebAPITestSuite(t *testing.T) {
	suite.Run(t, new(PostgresWebAPITestSuite))
}

func (s *PostgresWebAPITestSuite) SetupSuite() {
	s.db = pgtestutils.StartPostgres(s.T())
}

func (s *PostgresWebAPITestSuite) SetupTest() {
	s.h = testutils.NewHarness(s.T(), nil, infra_repository.NewUoW(s.db))
	s.user = uuid.New()
	s.token = s.h.Token(s.T(), s.user)
}
