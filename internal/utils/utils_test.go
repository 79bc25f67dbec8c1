package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestRoundMoney() {
	suite.Equal(10.57, RoundMoney(10.566))
	suite.Equal(10.56, RoundMoney(10.564))
	suite.Equal(-2.35, RoundMoney(-2.345))
	suite.Equal(0.0, RoundMoney(0))
	suite.Equal(100.0, RoundMoney(100))
}

func (suite *UtilsTestSuite) TestRoundMoneyAvoidsFloatArtifacts() {
	// 0.1 + 0.2 is not exactly 0.3 in binary floating point.
	suite.Equal(0.3, RoundMoney(0.1+0.2))
}

func (suite *UtilsTestSuite) TestRoundToDecimalPlaces() {
	suite.Equal(3.142, RoundToDecimalPlaces(3.14159, 3))
	suite.Equal(3.0, RoundToDecimalPlaces(3.14159, 0))
}

func (suite *UtilsTestSuite) TestMaxAffordableShares() {
	suite.Equal(int64(100), MaxAffordableShares(10000, 100))
	suite.Equal(int64(95), MaxAffordableShares(1000, 10.5))
	suite.Equal(int64(0), MaxAffordableShares(50, 100))
}

func (suite *UtilsTestSuite) TestMaxAffordableSharesGuards() {
	suite.Equal(int64(0), MaxAffordableShares(1000, 0))
	suite.Equal(int64(0), MaxAffordableShares(1000, -1))
	suite.Equal(int64(0), MaxAffordableShares(0, 100))
	suite.Equal(int64(0), MaxAffordableShares(-1000, 100))
}
