package public

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

type transact struct {
	Recipient string `json:"recipient" validate:"required"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

type walletInfo struct {
	Address database.Address `json:"address"`
	Name    string           `json:"name"`
	Balance uint64           `json:"balance"`
}

type knownAddress struct {
	Address database.Address `json:"address"`
	Name    string           `json:"name"`
}

type chainLength struct {
	Length int `json:"length"`
}

type status struct {
	Status string `json:"status"`
}
