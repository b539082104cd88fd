package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	MethodUpdateScore = "updateScore"
	MethodGetScore    = "getScore"
	MethodScores      = "scores"
)

var scoreBinding = mustLoad("score", "score.json", true)

// ScoreBinding контракт результатов квизов
type ScoreBinding struct {
	*Binding
}

func Score() ScoreBinding {
	return ScoreBinding{Binding: scoreBinding}
}

func (b ScoreBinding) PackUpdateScore(score *big.Int) ([]byte, error) {
	return b.Pack(MethodUpdateScore, score)
}

func (b ScoreBinding) PackGetScore(user common.Address) ([]byte, error) {
	return b.Pack(MethodGetScore, user)
}

func (b ScoreBinding) UnpackGetScore(data []byte) (*big.Int, error) {
	values, err := b.Unpack(MethodGetScore, data)
	if err != nil {
		return nil, err
	}
	return asBigInt(b.Name+"."+MethodGetScore, values[0])
}
