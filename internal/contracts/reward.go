package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	MethodRewardStudent = "rewardStudent"
	MethodGetBalance    = "getBalance"

	EventRewardIssued = "RewardIssued"
)

// ABI наградного контракта в исходном деплое не опубликован.
// Описание ниже составлено по вызовам и не сверено с байткодом.
var rewardBinding = mustLoad("reward", "reward.json", false)

// RewardBinding контракт токенов-наград
type RewardBinding struct {
	*Binding
}

func Reward() RewardBinding {
	return RewardBinding{Binding: rewardBinding}
}

func (b RewardBinding) PackRewardStudent(student common.Address, score *big.Int) ([]byte, error) {
	return b.Pack(MethodRewardStudent, student, score)
}

func (b RewardBinding) PackGetBalance(account common.Address) ([]byte, error) {
	return b.Pack(MethodGetBalance, account)
}

func (b RewardBinding) UnpackGetBalance(data []byte) (*big.Int, error) {
	values, err := b.Unpack(MethodGetBalance, data)
	if err != nil {
		return nil, err
	}
	return asBigInt(b.Name+"."+MethodGetBalance, values[0])
}
