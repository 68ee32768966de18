package oracle

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const oracleABI = `[
  {"type":"function","name":"updateSentiment","stateMutability":"nonpayable",
   "inputs":[{"name":"score","type":"int256"},{"name":"summary","type":"string"}],"outputs":[]},
  {"type":"function","name":"getOracleData","stateMutability":"view","inputs":[],
   "outputs":[{"name":"score","type":"int256"},{"name":"summary","type":"string"},{"name":"timestamp","type":"uint256"}]}
]`

const (
	updateMethod = "updateSentiment"
	readMethod   = "getOracleData"
)

var parsedOracleABI = mustParseABI(oracleABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("parse oracle abi: %v", err))
	}
	return parsed
}
