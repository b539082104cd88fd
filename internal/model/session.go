package model

import "math/big"

// Session сессия репетиторства, хранится в контракте
type Session struct {
	ID        uint64   `json:"id"`
	Tutor     string   `json:"tutor"`
	Learner   string   `json:"learner"`
	Subject   string   `json:"subject"`
	Payment   *big.Int `json:"payment"` // в wei
	Completed bool     `json:"completed"`
}
